package treesitter

import "strings"

// clangKinds renames tree-sitter node types to the clang kinds clangd
// reports for the same construct.
//
//nolint:gochecknoglobals // lookup table
var clangKinds = map[string]string{
	"translation_unit":       "TranslationUnit",
	"function_definition":    "Function",
	"compound_statement":     "Compound",
	"declaration":            "Var",
	"parameter_declaration":  "ParmVar",
	"field_declaration":      "Field",
	"struct_specifier":       "Record",
	"union_specifier":        "Record",
	"class_specifier":        "CXXRecord",
	"enum_specifier":         "Enum",
	"enumerator":             "EnumConstant",
	"namespace_definition":   "Namespace",
	"call_expression":        "Call",
	"field_expression":       "Member",
	"identifier":             "DeclRef",
	"qualified_identifier":   "DeclRef",
	"number_literal":         "IntegerLiteral",
	"string_literal":         "StringLiteral",
	"char_literal":           "CharacterLiteral",
	"true":                   "CXXBoolLiteral",
	"false":                  "CXXBoolLiteral",
	"binary_expression":      "BinaryOperator",
	"unary_expression":       "UnaryOperator",
	"assignment_expression":  "BinaryOperator",
	"conditional_expression": "ConditionalOperator",
	"cast_expression":        "CStyleCastExpr",
	"subscript_expression":   "ArraySubscript",
	"if_statement":           "If",
	"for_statement":          "For",
	"while_statement":        "While",
	"do_statement":           "Do",
	"switch_statement":       "Switch",
	"case_statement":         "Case",
	"return_statement":       "Return",
	"break_statement":        "Break",
	"continue_statement":     "Continue",
	"goto_statement":         "Goto",
	"labeled_statement":      "Label",
	"preproc_include":        "InclusionDirective",
	"preproc_def":            "MacroDefinition",
	"preproc_function_def":   "MacroDefinition",
}

// flattened types are groupings clang has no node for; their children are
// hoisted into the parent.
//
//nolint:gochecknoglobals // lookup table
var flattened = map[string]bool{
	"argument_list":          true,
	"condition_clause":       true,
	"expression_statement":   true,
	"field_declaration_list": true,
	"init_declarator":        true,
}

// skipped types never appear in replies.
//
//nolint:gochecknoglobals // lookup table
var skipped = map[string]bool{
	"comment": true,
}

// kindOf maps a tree-sitter type to a clang kind, falling back to the type
// in CamelCase.
func kindOf(typ string) string {
	if kind, ok := clangKinds[typ]; ok {
		return kind
	}
	var b strings.Builder
	for _, part := range strings.Split(strings.ToLower(typ), "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
