package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_PointStruct(t *testing.T) {
	t.Parallel()
	item := Item{
		Kind: "struct",
		Name: "Point",
		ID:   "Struct{id:StructId(3)}",
		Fields: []Field{
			{Name: "x", Ty: "f64"},
			{Name: "y", Ty: "f64"},
		},
	}

	got, err := Marshal(item)
	require.NoError(t, err)
	assert.Equal(t,
		`{"kind":"struct","name":"Point","id":"Struct{id:StructId(3)}","fields":[{"name":"x","ty":"f64"},{"name":"y","ty":"f64"}]}`,
		string(got))
}

func TestMarshal_OmitsEmptyContainers(t *testing.T) {
	t.Parallel()
	doc := Document{Files: []File{{
		Path: "src/lib.rs",
		Items: []Item{
			{Kind: "struct", Name: "Unit", ID: "Struct{id:StructId(0)}", Fields: []Field{}},
			{Kind: "enum", Name: "E", ID: "Enum{id:EnumId(0)}", Variants: []Variant{{Name: "A"}, {Name: "B", Fields: []Field{}}}},
			{Kind: "function", Name: "f", ID: "Function{id:FunctionId(0)}", Ret: "()", Body: nil},
		},
	}}}

	got, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t,
		`{"files":[{"path":"src/lib.rs","items":[`+
			`{"kind":"struct","name":"Unit","id":"Struct{id:StructId(0)}"},`+
			`{"kind":"enum","name":"E","id":"Enum{id:EnumId(0)}","variants":[{"name":"A"},{"name":"B"}]},`+
			`{"kind":"function","name":"f","id":"Function{id:FunctionId(0)}","ret":"()"}]}]}`,
		string(got))
	assert.NotContains(t, string(got), "null")
	assert.NotContains(t, string(got), "[]")
}

func TestMarshal_EmptyDocument(t *testing.T) {
	t.Parallel()
	got, err := Marshal(Document{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
}

func TestMarshal_FlagsAndBody(t *testing.T) {
	t.Parallel()
	doc := Document{
		Crates: []Crate{
			{Name: "demo", RootFile: "src/lib.rs", Edition: "2021", IsLocal: true},
			{Name: "serde", IsLocal: false},
		},
		Files: []File{{Path: "src/lib.rs", Items: []Item{{
			Kind: "function", Name: "run", ID: "Function{id:FunctionId(1)}", Ret: "()",
			Body: &Body{
				Locals:   []Local{{Name: "x", ID: 0}, {Name: "y", Ty: "u8", ID: 1, Mut: true}},
				Closures: []Closure{{ID: 0, Params: []Param{{Name: "a"}}}},
			},
		}}}},
	}

	got, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t,
		`{"crates":[{"name":"demo","root_file":"src/lib.rs","edition":"2021","is_local":1},{"name":"serde","is_local":0}],`+
			`"files":[{"path":"src/lib.rs","items":[{"kind":"function","name":"run","id":"Function{id:FunctionId(1)}","ret":"()",`+
			`"body":{"locals":[{"name":"x","id":0,"mut":0},{"name":"y","ty":"u8","id":1,"mut":1}],"closures":[{"id":0,"params":[{"name":"a"}]}]}}]}]}`,
		string(got))
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	t.Parallel()
	got, err := Marshal(Field{Name: "f", Ty: "Box<dyn Fn() -> bool>"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"f","ty":"Box<dyn Fn() -> bool>"}`, string(got))
}

func TestMarshal_Idempotent(t *testing.T) {
	t.Parallel()
	doc := Document{Files: []File{{Path: "a.rs", Items: []Item{{Kind: "const", Name: "N", ID: "Const{id:ConstId(0)}", Ty: "usize"}}}}}

	a, err := Marshal(doc)
	require.NoError(t, err)
	b, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotContains(t, string(a), "\n")
}

func TestUnmarshal_RoundTripsFlags(t *testing.T) {
	t.Parallel()
	doc, err := Unmarshal([]byte(`{"crates":[{"name":"a","is_local":1},{"name":"b","is_local":false}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Crates, 2)
	assert.True(t, bool(doc.Crates[0].IsLocal))
	assert.False(t, bool(doc.Crates[1].IsLocal))

	_, err = Unmarshal([]byte(`{"crates":[{"name":"a","is_local":2}]}`))
	assert.Error(t, err)
}

func TestBodyEmpty(t *testing.T) {
	t.Parallel()
	var nilBody *Body
	assert.True(t, nilBody.Empty())
	assert.True(t, (&Body{}).Empty())
	assert.False(t, (&Body{Closures: []Closure{{ID: 0}}}).Empty())
}

func TestWriteFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "target", ".forgen.json")
	doc := &Document{Crates: []Crate{{Name: "demo", IsLocal: true}}}

	require.NoError(t, WriteFile(path, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"crates":[{"name":"demo","is_local":1}]}`, string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFile_Unwritable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "target")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteFile(filepath.Join(blocker, ".forgen.json"), &Document{})
	assert.Error(t, err)
}
