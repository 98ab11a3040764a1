package index

import (
	"testing"

	"cce/internal/model"
)

func TestUpsertReplacesOnDuplicatePath(t *testing.T) {
	idx := New()
	idx.Upsert(model.FileIndex{Path: "a.go", ContentHash: "h1"}, nil)
	idx.Upsert(model.FileIndex{Path: "a.go", ContentHash: "h2"}, nil)

	fi, ok := idx.Get("a.go")
	if !ok {
		t.Fatal("expected a.go to be present")
	}
	if fi.ContentHash != "h2" {
		t.Errorf("expected latest upsert to win, got hash %s", fi.ContentHash)
	}
}

func TestSymbolReferences(t *testing.T) {
	idx := New()
	idx.Upsert(model.FileIndex{
		Path:    "a.go",
		Symbols: []model.Symbol{{Name: "Widget", Kind: model.SymbolType}},
	}, nil)
	idx.Upsert(model.FileIndex{
		Path:    "b.go",
		Symbols: []model.Symbol{{Name: "Widget", Kind: model.SymbolType}, {Name: "Other", Kind: model.SymbolFunction}},
	}, nil)

	refs := idx.SymbolReferences("Widget")
	if len(refs) != 2 {
		t.Fatalf("expected 2 files referencing Widget, got %d", len(refs))
	}
}

func TestBuildImportGraphResolvesAndInverts(t *testing.T) {
	idx := New()
	idx.Upsert(model.FileIndex{Path: "pkg/widget.go"}, nil)
	idx.Upsert(model.FileIndex{Path: "cmd/main.go"}, []model.ImportEdge{
		{FromPath: "cmd/main.go", Specifier: "pkg/widget.go"},
	})

	idx.BuildImportGraph()

	importers := idx.Importers("pkg/widget.go")
	if len(importers) != 1 || importers[0] != "cmd/main.go" {
		t.Fatalf("expected cmd/main.go to import pkg/widget.go, got %v", importers)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	idx := New()
	idx.Upsert(model.FileIndex{Path: "a.go", ContentHash: "h1"}, []model.ImportEdge{
		{FromPath: "a.go", Specifier: "b.go"},
	})
	idx.Upsert(model.FileIndex{Path: "b.go", ContentHash: "h2"}, nil)

	data, err := idx.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	restored := New()
	if err := restored.Deserialize(data); err != nil {
		t.Fatal(err)
	}
	if !restored.Has("a.go") || !restored.Has("b.go") {
		t.Fatal("expected both files to survive round trip")
	}
	if importers := restored.Importers("b.go"); len(importers) != 1 {
		t.Errorf("expected import graph to be rebuilt after deserialize, got %v", importers)
	}
}

func TestRemoveClearsInverseEdges(t *testing.T) {
	idx := New()
	idx.Upsert(model.FileIndex{Path: "b.go"}, nil)
	idx.Upsert(model.FileIndex{Path: "a.go"}, []model.ImportEdge{{FromPath: "a.go", Specifier: "b.go", Target: "b.go"}})
	idx.BuildImportGraph()

	idx.Remove("a.go")
	if importers := idx.Importers("b.go"); len(importers) != 0 {
		t.Errorf("expected no importers after removing a.go, got %v", importers)
	}
}

func TestAllReturnsSortedSnapshot(t *testing.T) {
	idx := New()
	idx.Upsert(model.FileIndex{Path: "b.go"}, nil)
	idx.Upsert(model.FileIndex{Path: "a.go"}, nil)

	all := idx.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 files, got %d", len(all))
	}
	if all[0].Path != "a.go" || all[1].Path != "b.go" {
		t.Errorf("expected sorted order a.go, b.go; got %v", all)
	}
}

func TestImportMapsReflectsForwardAndInverse(t *testing.T) {
	idx := New()
	idx.Upsert(model.FileIndex{Path: "pkg/widget.go"}, nil)
	idx.Upsert(model.FileIndex{Path: "cmd/main.go"}, []model.ImportEdge{
		{FromPath: "cmd/main.go", Specifier: "pkg/widget.go"},
	})
	idx.BuildImportGraph()

	importsOf, importedBy := idx.ImportMaps()
	if len(importsOf["cmd/main.go"]) != 1 || importsOf["cmd/main.go"][0] != "pkg/widget.go" {
		t.Errorf("expected cmd/main.go to import pkg/widget.go, got %v", importsOf["cmd/main.go"])
	}
	if len(importedBy["pkg/widget.go"]) != 1 || importedBy["pkg/widget.go"][0] != "cmd/main.go" {
		t.Errorf("expected pkg/widget.go to be imported by cmd/main.go, got %v", importedBy["pkg/widget.go"])
	}
}

func TestLastUpdatedIsMonotonic(t *testing.T) {
	idx := New()
	idx.Upsert(model.FileIndex{Path: "a.go"}, nil)
	first := idx.LastUpdated()
	idx.Upsert(model.FileIndex{Path: "b.go"}, nil)
	second := idx.LastUpdated()
	if !second.After(first) {
		t.Errorf("expected last_updated to advance monotonically, got %v then %v", first, second)
	}
}
