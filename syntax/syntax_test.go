// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package syntax_test

import (
	"testing"

	"go.wiregen.dev/wiregen/internal/testutil"
	"go.wiregen.dev/wiregen/syntax"
)

func parseOK(
	t *testing.T,
	src string,
	opts ...syntax.ParseOption,
) *syntax.Schema {
	t.Helper()
	t.Logf("source: %q", src)

	schema, err := syntax.Parse([]byte(src), opts...)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, src, syntax.Unparse(schema))
	return schema
}

func parseErr(
	t *testing.T,
	src string,
	opts ...syntax.ParseOption,
) *syntax.Error {
	t.Helper()
	t.Logf("source: %q", src)

	_, err := syntax.Parse([]byte(src), opts...)
	testutil.AssertError(t, err)
	return err.(*syntax.Error)
}

func declsOf[T any](schema *syntax.Schema) []*T {
	var out []*T
	for child := range schema.ChildNodes() {
		if decl, ok := any(child).(*T); ok {
			out = append(out, decl)
		}
	}
	return out
}

func onlyDecl[T any](t *testing.T, schema *syntax.Schema) *T {
	t.Helper()
	decls := declsOf[T](schema)
	if len(decls) != 1 {
		t.Fatalf("Expected 1 declaration of %T, got: %d", decls, len(decls))
	}
	return decls[0]
}

func TestSyntaxDecl(t *testing.T) {
	t.Parallel()

	parseOK(t, `syntax = "proto3";`)
	parseOK(t, "// header\nsyntax = 'proto3' ; // trailing\n")

	err := parseErr(t, `package foo;`)
	testutil.ExpectEq(t, uint32(2007), err.Code())
	testutil.ExpectEq(t, syntax.NewSpan(0, 7), err.Span())

	err = parseErr(t, ``)
	testutil.ExpectEq(t, uint32(2007), err.Code())

	err = parseErr(t, `syntax = "proto2";`)
	testutil.ExpectEq(t, uint32(2008), err.Code())
	testutil.ExpectEq(t, syntax.NewSpan(9, 8), err.Span())
}

func TestPackageDecl(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, "syntax = \"proto3\";\npackage foo.bar.v1;")
	pkg := onlyDecl[syntax.PackageDecl](t, schema)
	testutil.ExpectEq(t, "foo.bar.v1", pkg.Name())
	testutil.ExpectEq(t, 3, len(pkg.Idents()))

	err := parseErr(t, `syntax = "proto3";package a;package b;`)
	testutil.ExpectEq(t, uint32(2009), err.Code())
	testutil.ExpectEq(t, syntax.NewSpan(28, 10), err.Span())
}

func TestImport(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, "syntax = \"proto3\";\nimport \"other.proto\";")
	imported := onlyDecl[syntax.Import](t, schema)
	testutil.ExpectEq(t, "other.proto", imported.Path().Get())

	err := parseErr(t, "syntax = \"proto3\";\nimport public \"x.proto\";")
	testutil.ExpectEq(t, uint32(2013), err.Code())
	testutil.ExpectEq(t, syntax.NewSpan(26, 6), err.Span())
	testutil.ExpectMatch(t, "import public", err.Message())

	err = parseErr(t, "syntax = \"proto3\";\nimport weak \"x.proto\";")
	testutil.ExpectEq(t, uint32(2013), err.Code())
	testutil.ExpectEq(t, syntax.NewSpan(26, 4), err.Span())

	err = parseErr(t, "syntax = \"proto3\";\nimport 42;")
	testutil.ExpectEq(t, uint32(2003), err.Code())
}

func TestOption(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, `syntax = "proto3";option go_package = "example.com/foo;foopb";`)
	option := onlyDecl[syntax.Option](t, schema)
	testutil.ExpectEq(t, "go_package", option.Name().Get())
	value, ok := option.Value().(*syntax.StrLit)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "example.com/foo;foopb", value.Get())

	schema = parseOK(t, `syntax = "proto3";option cc_enable_arenas = true;`)
	option = onlyDecl[syntax.Option](t, schema)
	boolValue, ok := option.Value().(*syntax.Ident)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "true", boolValue.Get())

	err := parseErr(t, `syntax = "proto3";option (custom) = 1;`)
	testutil.ExpectEq(t, uint32(2013), err.Code())

	err = parseErr(t, `syntax = "proto3";option foo = {};`)
	testutil.ExpectEq(t, uint32(2010), err.Code())
}

func TestStrLitEscapes(t *testing.T) {
	t.Parallel()

	parseStr := func(literal string) string {
		t.Helper()
		src := `syntax = "proto3";option go_package = ` + literal + `;`
		schema := parseOK(t, src)
		option := onlyDecl[syntax.Option](t, schema)
		return option.Value().(*syntax.StrLit).Get()
	}

	testutil.ExpectEq(t, "plain", parseStr(`"plain"`))
	testutil.ExpectEq(t, "a\n\tAA\\", parseStr(`"a\n\t\x41\101\\"`))
	testutil.ExpectEq(t, "\x07\x08\x0C\x0B\r'\"?", parseStr(`"\a\b\f\v\r\'\"\?"`))
	testutil.ExpectEq(t, "\x00end", parseStr(`"\0end"`))
	testutil.ExpectEq(t, "\xFF", parseStr(`"\377"`))

	err := parseErr(t, `syntax = "proto3";import "a\q";`)
	testutil.ExpectEq(t, uint32(1010), err.Code())

	err = parseErr(t, `syntax = "proto3";import "a\400";`)
	testutil.ExpectEq(t, uint32(1010), err.Code())
}

func TestMessage(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, `syntax = "proto3";

message Scalars {
  int32 a = 1;
  repeated string b = 2;
  bytes c = 3 [deprecated = true];
  Nested d = 4;
  .foo.Bar e = 5;

  message Nested {
    sint64 x = 1;
  }
}
`)
	message := onlyDecl[syntax.Message](t, schema)
	testutil.ExpectEq(t, "Scalars", message.Name().Get())
	testutil.ExpectEq(t, 5, len(message.Fields()))
	testutil.ExpectEq(t, 1, len(message.Messages()))

	fields := message.Fields()
	testutil.ExpectEq(t, "int32", fields[0].TypeName().Name())
	testutil.ExpectEq(t, "a", fields[0].Name().Get())
	number, ok := fields[0].Number().GetUint32()
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, uint32(1), number)
	testutil.ExpectFalse(t, fields[0].IsRepeated())
	testutil.ExpectFalse(t, fields[0].IsOptional())

	testutil.ExpectTrue(t, fields[1].IsRepeated())

	testutil.ExpectEq(t, 1, len(fields[2].Options()))
	fieldOption := fields[2].Options()[0]
	testutil.ExpectEq(t, "deprecated", fieldOption.Name().Get())
	optionValue, ok := fieldOption.Value().(*syntax.Ident)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "true", optionValue.Get())

	testutil.ExpectFalse(t, fields[3].TypeName().IsFullyQualified())
	testutil.ExpectTrue(t, fields[4].TypeName().IsFullyQualified())
	testutil.ExpectEq(t, "foo.Bar", fields[4].TypeName().Name())

	nested := message.Messages()[0]
	testutil.ExpectEq(t, "Nested", nested.Name().Get())
	testutil.ExpectEq(t, "sint64", nested.Fields()[0].TypeName().Name())
}

func TestFieldPresenceLabels(t *testing.T) {
	t.Parallel()

	err := parseErr(t, `syntax = "proto3";message M{optional int32 x = 1;}`)
	testutil.ExpectEq(t, uint32(2011), err.Code())
	testutil.ExpectEq(t, syntax.NewSpan(28, 8), err.Span())

	schema := parseOK(t,
		`syntax = "proto3";message M{optional int32 x = 1;}`,
		syntax.AllowExplicitPresence(true),
	)
	message := onlyDecl[syntax.Message](t, schema)
	testutil.ExpectTrue(t, message.Fields()[0].IsOptional())

	err = parseErr(t,
		`syntax = "proto3";message M{repeated optional int32 x = 1;}`,
		syntax.AllowExplicitPresence(true),
	)
	testutil.ExpectEq(t, uint32(2012), err.Code())
	testutil.ExpectEq(t, syntax.NewSpan(37, 8), err.Span())

	err = parseErr(t,
		`syntax = "proto3";message M{optional repeated int32 x = 1;}`,
		syntax.AllowExplicitPresence(true),
	)
	testutil.ExpectEq(t, uint32(2012), err.Code())
}

func TestUnsupportedConstructs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		item      string
		construct string
	}{
		{"oneof kind { int32 a = 1; }", "oneof"},
		{"map<string, int32> tags = 1;", "map"},
		{"extensions 100 to 199;", "extensions"},
		{"extend Other { int32 x = 99; }", "extend"},
		{"group Result = 1 {}", "group"},
		{"required int32 x = 1;", "required"},
	}
	for _, test := range tests {
		src := `syntax = "proto3";message M{` + test.item + `}`
		err := parseErr(t, src)
		testutil.ExpectEq(t, uint32(2013), err.Code())
		testutil.ExpectMatch(t, test.construct, err.Message())
	}
}

func TestMessageReserved(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, `syntax = "proto3";
message M {
  reserved 2, 15, 9 to 11, 40 to max;
  reserved "foo", "bar";
}
`)
	message := onlyDecl[syntax.Message](t, schema)
	testutil.ExpectEq(t, 2, len(message.Reserved()))

	ranges := message.Reserved()[0].Ranges()
	testutil.ExpectEq(t, 4, len(ranges))

	lo, _ := ranges[0].Lo().GetUint32()
	testutil.ExpectEq(t, uint32(2), lo)
	testutil.ExpectTrue(t, ranges[0].Hi() == nil)
	testutil.ExpectFalse(t, ranges[0].ToMax())

	lo, _ = ranges[2].Lo().GetUint32()
	hi, _ := ranges[2].Hi().GetUint32()
	testutil.ExpectEq(t, uint32(9), lo)
	testutil.ExpectEq(t, uint32(11), hi)

	testutil.ExpectTrue(t, ranges[3].ToMax())
	testutil.ExpectTrue(t, ranges[3].Hi() == nil)

	names := message.Reserved()[1].Names()
	testutil.ExpectEq(t, 2, len(names))
	testutil.ExpectEq(t, "foo", names[0].Get())
	testutil.ExpectEq(t, "bar", names[1].Get())

	err := parseErr(t, `syntax = "proto3";message M{reserved x;}`)
	testutil.ExpectEq(t, uint32(2015), err.Code())
}

func TestEnum(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, `syntax = "proto3";

enum Status {
  option allow_alias = true;
  STATUS_UNSPECIFIED = 0;
  STATUS_OK = 1;
  STATUS_DONE = 1;
  STATUS_NEGATIVE = -2;
  STATUS_OLD = 3 [deprecated = true];
  reserved 5, 9 to 11;
  reserved "STATUS_GONE";
}
`)
	enum := onlyDecl[syntax.Enum](t, schema)
	testutil.ExpectEq(t, "Status", enum.Name().Get())
	testutil.ExpectEq(t, 5, len(enum.Values()))
	testutil.ExpectEq(t, 1, len(enum.Options()))
	testutil.ExpectEq(t, 2, len(enum.Reserved()))

	values := enum.Values()
	testutil.ExpectEq(t, "STATUS_UNSPECIFIED", values[0].Name().Get())
	zero, ok := values[0].Value().GetInt32()
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, int32(0), zero)

	negative, ok := values[3].Value().GetInt32()
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, int32(-2), negative)
	testutil.ExpectTrue(t, values[3].Value().IsNegative())

	testutil.ExpectEq(t, 1, len(values[4].Options()))
	testutil.ExpectEq(t, "deprecated", values[4].Options()[0].Name().Get())
}

func TestService(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, `syntax = "proto3";

service RouteGuide {
  option deprecated = false;
  rpc GetFeature(Point) returns (Feature);
  rpc ListFeatures(Rectangle) returns (stream Feature);
  rpc RecordRoute(stream Point) returns (RouteSummary) {
    option idempotency_level = NO_SIDE_EFFECTS;
  }
  rpc RouteChat(stream RouteNote) returns (stream RouteNote);
}
`)
	service := onlyDecl[syntax.Service](t, schema)
	testutil.ExpectEq(t, "RouteGuide", service.Name().Get())
	testutil.ExpectEq(t, 1, len(service.Options()))
	testutil.ExpectEq(t, 4, len(service.Rpcs()))

	rpcs := service.Rpcs()
	testutil.ExpectEq(t, "GetFeature", rpcs[0].Name().Get())
	testutil.ExpectEq(t, "Point", rpcs[0].RequestType().Name())
	testutil.ExpectEq(t, "Feature", rpcs[0].ResponseType().Name())
	testutil.ExpectFalse(t, rpcs[0].RequestIsStream())
	testutil.ExpectFalse(t, rpcs[0].ResponseIsStream())

	testutil.ExpectFalse(t, rpcs[1].RequestIsStream())
	testutil.ExpectTrue(t, rpcs[1].ResponseIsStream())

	testutil.ExpectTrue(t, rpcs[2].RequestIsStream())
	testutil.ExpectFalse(t, rpcs[2].ResponseIsStream())
	testutil.ExpectEq(t, 1, len(rpcs[2].Options()))
	testutil.ExpectEq(t, "idempotency_level", rpcs[2].Options()[0].Name().Get())

	testutil.ExpectTrue(t, rpcs[3].RequestIsStream())
	testutil.ExpectTrue(t, rpcs[3].ResponseIsStream())
}

func TestServiceErrors(t *testing.T) {
	t.Parallel()

	err := parseErr(t, `syntax = "proto3";service S{rpc F(A) (B);}`)
	testutil.ExpectEq(t, uint32(2014), err.Code())
	testutil.ExpectMatch(t, "returns", err.Message())

	err = parseErr(t, `syntax = "proto3";service S{int32 x = 1;}`)
	testutil.ExpectEq(t, uint32(2016), err.Code())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		code uint32
	}{
		{`syntax = "proto3";123`, 2005},
		{`syntax = "proto3";frobnicate X {}`, 2006},
		{`syntax = "proto3";message M { int32 x 1; }`, 2000},
		{`syntax = "proto3";message M { int32 = 1; }`, 2001},
		{`syntax = "proto3";message M { int32 x = ; }`, 2002},
		{`syntax = "proto3";message M { repeated = 1; }`, 2004},
		{`syntax = "proto3";message M { int32 x = 99999999999999999999; }`, 1006},
		{`syntax = "proto3";enum E { V = -99999999999999999999; }`, 1007},
		{`syntax = "proto3";message M { int32 x = 1 `, 2000},
	}
	for _, test := range tests {
		err := parseErr(t, test.src)
		testutil.ExpectEq(t, test.code, err.Code())
	}
}

func TestEmptyStatements(t *testing.T) {
	t.Parallel()

	parseOK(t, `syntax = "proto3";;message M {;int32 a = 1;;};`)
	parseOK(t, `syntax = "proto3";enum E {;E_U = 0;;}`)
	parseOK(t, `syntax = "proto3";service S {;rpc F(A) returns (B) {;};}`)
}

func TestUnparse(t *testing.T) {
	t.Parallel()

	sources := []string{
		"syntax = \"proto3\";",
		"syntax='proto3' ;  // c\n",
		"syntax = \"proto3\";\r\n/* x */ message M {\r\n\tint32 a = 1;;\r\n}\n",
		"syntax = \"proto3\";message A{message B{B b=1;}}enum E{E_U=0;}" +
			"service S{rpc F(A)returns(stream A);}",
		"syntax = \"proto3\";\n\npackage a.b;\n\nimport \"x.proto\";\n\n" +
			"message M {\n  repeated .a.B f = 3 [packed = false, deprecated = true];\n}\n",
	}
	for _, src := range sources {
		parseOK(t, src)
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, `syntax = "proto3";message M{int32 a = 1;}`)

	idents := 0
	syntax.Walk(schema, func(node syntax.Node) bool {
		if node == nil {
			return true
		}
		if _, ok := node.(*syntax.Ident); ok {
			idents += 1
		}
		return true
	})
	testutil.ExpectEq(t, 3, idents)

	visited := 0
	syntax.Walk(schema, func(node syntax.Node) bool {
		if node == nil {
			return true
		}
		visited += 1
		return false
	})
	testutil.ExpectEq(t, 1, visited)
}

func TestDumpJSON(t *testing.T) {
	t.Parallel()

	schema := parseOK(t, `syntax = "proto3";`)
	expected := `{"schema": {
    "span": {"start": 0, "len": 18},
    "child-nodes": [
        {"syntax-decl": {
            "span": {"start": 0, "len": 18},
            "child-nodes": [
                {"keyword": {
                    "span": {"start": 0, "len": 6},
                    "unparse": "syntax"}},
                {"space": {
                    "span": {"start": 6, "len": 1},
                    "unparse": " "}},
                {"sigil": {
                    "span": {"start": 7, "len": 1},
                    "unparse": "="}},
                {"space": {
                    "span": {"start": 8, "len": 1},
                    "unparse": " "}},
                {"str-lit": {
                    "span": {"start": 9, "len": 8},
                    "value": "proto3"}},
                {"sigil": {
                    "span": {"start": 17, "len": 1},
                    "unparse": ";"}}
            ]}}
    ]}}`
	testutil.ExpectNoDiff(t, expected, string(testutil.DumpJSON(schema)))
}

func TestPositionOf(t *testing.T) {
	t.Parallel()

	src := []byte("syntax = \"proto3\";\npackage a;\nmessage M {\n  int32 x = 1;\n}\n")

	pos := syntax.PositionOf(src, syntax.NewSpan(0, 6))
	testutil.ExpectEq(t, syntax.Position{Line: 1, Column: 1}, pos)

	pos = syntax.PositionOf(src, syntax.NewSpan(19, 7))
	testutil.ExpectEq(t, syntax.Position{Line: 2, Column: 1}, pos)

	pos = syntax.PositionOf(src, syntax.NewSpan(44, 5))
	testutil.ExpectEq(t, syntax.Position{Line: 4, Column: 3}, pos)
}
