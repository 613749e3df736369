package document_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astnav/pkg/document"
)

func TestParsePosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    document.Position
		wantErr bool
	}{
		{in: "0:15", want: document.Position{Line: 0, Character: 15}},
		{in: " 3:0 ", want: document.Position{Line: 3, Character: 0}},
		{in: "3", wantErr: true},
		{in: "a:1", wantErr: true},
		{in: "1:b", wantErr: true},
		{in: "-1:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := document.ParsePosition(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, document.ErrSyntax)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	r, err := document.ParseRange("0:10-1:2")
	require.NoError(t, err)
	assert.Equal(t, document.NewRange(0, 10, 1, 2), r)

	r, err = document.ParseRange(r.String())
	require.NoError(t, err)
	assert.Equal(t, document.NewRange(0, 10, 1, 2), r)

	r, err = document.ParseRange("2:4")
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())

	_, err = document.ParseRange("1:0-0:5")
	assert.True(t, errors.Is(err, document.ErrInverted))

	_, err = document.ParseRange("1:0-x")
	assert.ErrorIs(t, err, document.ErrSyntax)
}
