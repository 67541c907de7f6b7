package objectschema_test

import (
	"reflect"
	"testing"
)

func TestSchema_JSONSchema(t *testing.T) {
	book := bookSchema(t)
	user := userSchema(t, book)

	js := user.JSONSchema()
	if js.SchemaURI == "" || js.Title != "user" || js.Type != "object" {
		t.Fatalf("unexpected root: %+v", js)
	}
	wantReq := []string{"name", "newBook", "newBooks", "oldBook", "oldBooks"}
	if !reflect.DeepEqual(js.Required, wantReq) {
		t.Fatalf("required = %v", js.Required)
	}
	if js.Properties["name"].Type != "string" {
		t.Fatalf("name = %+v", js.Properties["name"])
	}
	nb := js.Properties["newBook"]
	if nb.Type != "object" || nb.SchemaURI != "" || !reflect.DeepEqual(nb.Required, []string{"title"}) {
		t.Fatalf("nested book = %+v", nb)
	}
	if nb.Properties["year"].Type != "integer" {
		t.Fatalf("year = %+v", nb.Properties["year"])
	}
	list := js.Properties["oldBooks"]
	if list.Type != "array" || list.Items == nil || list.Items.Type != "object" {
		t.Fatalf("list = %+v", list)
	}
}
