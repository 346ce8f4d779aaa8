package tagindex

import (
	"reflect"
	"testing"
)

func TestUpdateFileExpandsNestedPrefixes(t *testing.T) {
	idx := New()
	idx.UpdateFile("a.md", []string{"a/b/c"})

	want := []string{"a", "a/b", "a/b/c"}
	if got := idx.AllTags(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllTags = %v, want %v", got, want)
	}
	for _, tag := range want {
		files := idx.FilesForTag(tag)
		if len(files) != 1 || files[0] != "a.md" {
			t.Errorf("FilesForTag(%q) = %v", tag, files)
		}
	}
}

func TestUpdateFileReplacesPriorEntries(t *testing.T) {
	idx := New()
	idx.UpdateFile("a.md", []string{"old"})
	idx.UpdateFile("a.md", []string{"new"})

	if files := idx.FilesForTag("old"); len(files) != 0 {
		t.Errorf("expected old tag cleared, got %v", files)
	}
	if files := idx.FilesForTag("new"); len(files) != 1 {
		t.Errorf("expected new tag present, got %v", files)
	}
}

func TestRemoveFile(t *testing.T) {
	idx := New()
	idx.UpdateFile("a.md", []string{"project"})
	idx.RemoveFile("a.md")

	if tags := idx.AllTags(); len(tags) != 0 {
		t.Errorf("expected empty index after removal, got %v", tags)
	}
}

func TestAutocompleteAndSearch(t *testing.T) {
	idx := New()
	idx.UpdateFile("a.md", []string{"project", "project/backend"})
	idx.UpdateFile("b.md", []string{"personal"})

	if got := idx.Autocomplete("proj"); !reflect.DeepEqual(got, []string{"project", "project/backend"}) {
		t.Errorf("Autocomplete = %v", got)
	}
	if got := idx.Search("son"); !reflect.DeepEqual(got, []string{"personal"}) {
		t.Errorf("Search = %v", got)
	}
}

func TestTagTree(t *testing.T) {
	idx := New()
	idx.UpdateFile("a.md", []string{"project/backend", "project/frontend"})
	idx.UpdateFile("b.md", []string{"personal"})

	tree := idx.TagTree()
	if len(tree) != 2 {
		t.Fatalf("expected 2 top-level tags, got %v", tree)
	}
	if tree[0].Name != "personal" || len(tree[0].Children) != 0 {
		t.Errorf("personal node = %+v", tree[0])
	}
	if tree[1].Name != "project" || len(tree[1].Children) != 2 {
		t.Errorf("project node = %+v", tree[1])
	}
}
