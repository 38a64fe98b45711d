package schemafile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yungbote/schemastore/internal/domain/contenttype"
)

const articleDoc = `
templates:
  - alias: article
    name: Article Page
schemas:
  - alias: article
    name: Article
    icon: icon-article
    is_container: true
    allow_at_root: true
    templates: [article, amp]
    default_template: article
    allowed_children: [comment]
    groups:
      - name: Content
        properties:
          - alias: title
            name: Title
            data_type_id: 1
            mandatory: true
            config:
              maxChars: 80
    properties:
      - alias: seo
        name: SEO
        data_type_id: 2
  - alias: comment
    name: Comment
    parent: article
`

func TestDecodeDocument(t *testing.T) {
	doc, err := Decode(strings.NewReader(articleDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Schemas) != 2 || len(doc.Templates) != 1 {
		t.Fatalf("counts: want=2/1 got=%d/%d", len(doc.Schemas), len(doc.Templates))
	}
	a := doc.Schemas[0]
	if a.DefaultTemplate != "article" || len(a.Templates) != 2 {
		t.Fatalf("templates: got=%v default=%q", a.Templates, a.DefaultTemplate)
	}
	if len(a.Groups) != 1 || a.Groups[0].Properties[0].Config["maxChars"] != 80 {
		t.Fatalf("group config: got=%+v", a.Groups)
	}
	if doc.Schemas[1].Parent != "article" {
		t.Fatalf("parent: want=article got=%q", doc.Schemas[1].Parent)
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("schemas:\n  - alias: a\n    colour: red\n"))
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDecodeEmpty(t *testing.T) {
	doc, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Schemas) != 0 {
		t.Fatalf("schemas: want=0 got=%d", len(doc.Schemas))
	}
}

func TestValidateDocument(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
		want string
	}{
		{"missing alias", Document{Schemas: []Schema{{Name: "x"}}}, "alias is required"},
		{"duplicate alias", Document{Schemas: []Schema{{Alias: "a"}, {Alias: "A"}}}, "duplicate alias"},
		{"default not listed", Document{Schemas: []Schema{{Alias: "a", Templates: []string{"t1"}, DefaultTemplate: "t2"}}}, "not listed"},
		{"template alias", Document{Templates: []Template{{Name: "x"}}}, "templates[0]"},
	}
	for _, tc := range cases {
		err := tc.doc.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: want error containing %q got=%v", tc.name, tc.want, err)
		}
	}
	ok := Document{Schemas: []Schema{{Alias: "a", Templates: []string{"T1"}, DefaultTemplate: "t1"}}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid document: %v", err)
	}
}

func TestEncodeDecodeKeepsShape(t *testing.T) {
	doc, err := Decode(strings.NewReader(articleDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(encoded): %v", err)
	}
	if again.Schemas[0].Groups[0].Properties[0].Alias != "title" || again.Schemas[1].Parent != "article" {
		t.Fatalf("re-decoded document differs: %+v", again.Schemas)
	}
}

func TestFromSchema(t *testing.T) {
	page := &contenttype.Template{ID: 7, Alias: "page"}
	amp := &contenttype.Template{ID: 8, Alias: "amp"}
	s := contenttype.New("article", "Article")
	s.ID = 3
	s.ParentID = 1
	s.AllowedContentTypes = []int64{4, 99}
	s.AllowedTemplates = []*contenttype.Template{page, amp}
	s.DefaultTemplate = amp
	s.AddPropertyGroup(contenttype.NewPropertyGroup("Content", 1))
	_ = s.AddPropertyType(&contenttype.PropertyType{Alias: "title", Config: []byte(`{"maxChars":80}`)}, "Content")
	_ = s.AddPropertyType(&contenttype.PropertyType{Alias: "seo"}, "")

	aliases := map[int64]string{1: "home", 4: "comment"}
	sd, err := FromSchema(s, func(id int64) (string, error) { return aliases[id], nil })
	if err != nil {
		t.Fatalf("FromSchema: %v", err)
	}
	if sd.Parent != "home" {
		t.Fatalf("parent: want=home got=%q", sd.Parent)
	}
	if len(sd.AllowedChildren) != 1 || sd.AllowedChildren[0] != "comment" {
		t.Fatalf("allowed children: got=%v", sd.AllowedChildren)
	}
	if sd.DefaultTemplate != "amp" || len(sd.Templates) != 2 {
		t.Fatalf("templates: got=%v default=%q", sd.Templates, sd.DefaultTemplate)
	}
	if got := sd.Groups[0].Properties[0].Config["maxChars"]; got != float64(80) {
		t.Fatalf("config: want=80 got=%v", got)
	}
	if len(sd.Properties) != 1 || sd.Properties[0].Alias != "seo" {
		t.Fatalf("ungrouped: got=%+v", sd.Properties)
	}

	sum := Summarize(s, sd.Parent)
	if sum.Templates != "page,amp*" {
		t.Fatalf("summary templates: want=page,amp* got=%q", sum.Templates)
	}
}
