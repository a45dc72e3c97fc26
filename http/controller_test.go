package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type DemoController struct {
	BaseController
}

func (p *DemoController) Index(w http.ResponseWriter, r *http.Request) {
	RenderText(w, "index:"+p.Name)
}

func (p *DemoController) Second(w http.ResponseWriter, r *http.Request) {
	RenderText(w, "second:"+p.Name)
}

func (p *DemoController) GetHandlers() (map[string]http.HandlerFunc, error) {
	return ReflectHandlers(p)
}

func TestReflectHandlers(t *testing.T) {
	testReflectHandlers(t, "demo1")
	testReflectHandlers(t, "demo2")
}

func testReflectHandlers(t *testing.T, name string) {
	controller := &DemoController{
		BaseController: BaseController{
			Name: name,
			Path: "/" + name,
		},
	}

	mapping, err := controller.GetHandlers()
	require.NoError(t, err)
	assert.EqualValues(t, 2, len(mapping))

	rec := httptest.NewRecorder()
	mapping["index"](rec, nil)
	assert.Equal(t, "index:"+name, rec.Body.String())
	rec = httptest.NewRecorder()
	mapping["second"](rec, nil)
	assert.Equal(t, "second:"+name, rec.Body.String())
}

func TestReflectPatternHandlers(t *testing.T) {
	controller := &DemoController{BaseController: BaseController{
		Name:           "demo",
		PatternMethods: map[string]string{"GET /a/{id}": "Index", "POST /b": "Second"},
	}}
	mapping, err := controller.GetHandlers()
	require.NoError(t, err)
	assert.Len(t, mapping, 2)
	assert.Contains(t, mapping, "GET /a/{id}")
	assert.Contains(t, mapping, "POST /b")

	controller.PatternMethods["GET /c"] = "Missing"
	_, err = controller.GetHandlers()
	assert.Error(t, err)
}

func TestJoinPattern(t *testing.T) {
	assert.Equal(t, "/index", joinPattern("/", "index"))
	assert.Equal(t, "/demo/index", joinPattern("/demo/", "/index"))
	assert.Equal(t, "POST /views/{id}", joinPattern("/", "POST /views/{id}"))
	assert.Equal(t, "GET /api/healthz", joinPattern("/api/", "GET /healthz"))
}

func TestToUnderlineName(t *testing.T) {
	assert.EqualValues(t, "index", ToUnderlineName("index"))
	assert.EqualValues(t, "index", ToUnderlineName("INDEX"))
	assert.EqualValues(t, "index", ToUnderlineName("Index"))
	assert.EqualValues(t, "in_dex", ToUnderlineName("InDex"))
	assert.EqualValues(t, "in_dex", ToUnderlineName("InDEX"))
	assert.EqualValues(t, "in_dex", ToUnderlineName("InDEx"))
	assert.EqualValues(t, "in_de_x", ToUnderlineName("InDeX"))
	assert.EqualValues(t, "in语言de_x", ToUnderlineName("In语言DeX"))
	assert.EqualValues(t, "", ToUnderlineName(""))
}
