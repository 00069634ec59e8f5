package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/openkraft/schemactl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_ForPropertyEmptyPathReturnsSameNode(t *testing.T) {
	r := domain.NewResult()
	assert.Same(t, r, r.ForProperty(""))
}

func TestResult_ForPropertyMissingPathIsEmptyAndDetached(t *testing.T) {
	r := domain.NewResult()
	r.ForPropertyCreate("blog").AddError(domain.Message{Text: "invalid"})

	missing := r.ForProperty("blog.title.sub")
	require.NotNil(t, missing)
	assert.False(t, missing.HasErrors())
	assert.Empty(t, missing.Errors())

	missing.AddError(domain.Message{Text: "not attached"})
	assert.Empty(t, r.ForProperty("blog.title").Errors())
	assert.Len(t, r.FlattenedErrors(), 1)
}

func TestResult_HasErrorsIsRecursive(t *testing.T) {
	r := domain.NewResult()
	r.ForPropertyCreate("a.b.c").AddError(domain.Message{Text: "deep"})

	assert.True(t, r.HasErrors())
	assert.True(t, r.ForProperty("a").HasErrors())
	assert.True(t, r.ForProperty("a.b.c").HasErrors())
	assert.Empty(t, r.Errors())
}

func TestResult_WarningsAndNotices(t *testing.T) {
	r := domain.NewResult()
	r.ForPropertyCreate("x").AddWarning(domain.Message{Text: "w"})
	r.AddNotice(domain.Message{Text: "n"})

	assert.False(t, r.HasErrors())
	assert.True(t, r.HasWarnings())
	assert.True(t, r.HasNotices())
	assert.Len(t, r.ForProperty("x").Warnings(), 1)
	assert.Len(t, r.Notices(), 1)
}

func TestResult_ZeroValueIsUsable(t *testing.T) {
	var r domain.Result
	assert.False(t, r.HasErrors())
	assert.False(t, r.ForProperty("a.b").HasErrors())

	r.ForPropertyCreate("a").AddError(domain.Message{Text: "e"})
	assert.True(t, r.HasErrors())
}

func TestResult_FlattenedErrors(t *testing.T) {
	r := domain.NewResult()
	r.AddError(domain.Message{Text: "root"})
	r.ForPropertyCreate("blog.title").AddError(domain.Message{Text: "required"})
	r.ForPropertyCreate("blog.author").AddError(domain.Message{Text: "unknown"})
	r.ForPropertyCreate("post")

	flat := r.FlattenedErrors()
	require.Len(t, flat, 3)
	assert.Equal(t, "", flat[0].Path)
	assert.Equal(t, "blog.title", flat[1].Path)
	assert.Equal(t, "blog.author", flat[2].Path)
	assert.Equal(t, "required", flat[1].Messages[0].Text)
}

func TestResult_Merge(t *testing.T) {
	a := domain.NewResult()
	a.ForPropertyCreate("blog.title").AddError(domain.Message{Text: "one"})

	b := domain.NewResult()
	b.ForPropertyCreate("blog.title").AddError(domain.Message{Text: "two"})
	b.ForPropertyCreate("blog.body").AddWarning(domain.Message{Text: "short"})

	a.Merge(b)
	a.Merge(nil)

	assert.Len(t, a.ForProperty("blog.title").Errors(), 2)
	assert.True(t, a.ForProperty("blog.body").HasWarnings())
}

func TestResult_JSON(t *testing.T) {
	input := `{
		"properties": {
			"blog": {
				"properties": {
					"title": {"errors": [{"code": 1221, "message": "This property is required."}]},
					"body": {}
				}
			}
		}
	}`

	var r domain.Result
	require.NoError(t, json.Unmarshal([]byte(input), &r))

	assert.True(t, r.HasErrors())
	title := r.ForProperty("blog.title").Errors()
	require.Len(t, title, 1)
	assert.Equal(t, 1221, title[0].Code)
	assert.Equal(t, "This property is required.", title[0].Text)
	assert.False(t, r.ForProperty("blog.body").HasErrors())

	out, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":{"blog":{"properties":{"title":{"errors":[{"code":1221,"message":"This property is required."}]},"body":{}}}}}`, string(out))
}
