package build

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meterbind/pkg/apis"
	"meterbind/pkg/apis/response"
	"meterbind/pkg/device"
)

const manifestJSON = `{
  "board": "esp32",
  "ade7880": [
    {"id": "meter_main", "irq_pin": "GPIO25", "current_b": {"accuracy_decimals": 3}}
  ]
}`

// buildBody mirrors Build without the device bindings.
type buildBody struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"eTag"`
	Board   string `json:"board"`
	Source  string `json:"source"`
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	InstallHandler(router.Group("/api/v1"), NewManager(device.NewManager()))
	return router
}

func do(router *gin.Engine, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetBuild(t *testing.T) {
	router := newRouter()

	w := do(router, http.MethodPost, "/api/v1/builds?name=panel", manifestJSON, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	eTag := w.Header().Get(apis.ETag)
	assert.NotEmpty(t, eTag)

	created := &buildBody{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), created))
	assert.Equal(t, "panel", created.Name)
	assert.Equal(t, "esp32", created.Board)
	assert.Contains(t, created.Source, "meter_main->set_current_b_sensor(meter_main_current_b);")
	assert.True(t, strings.HasSuffix(w.Header().Get(apis.Location), "/api/v1/builds/"+created.ID))

	w = do(router, http.MethodGet, "/api/v1/builds/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, eTag, w.Header().Get(apis.ETag))
	got := &buildBody{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), got))
	assert.Equal(t, created.Source, got.Source)

	w = do(router, http.MethodGet, "/api/v1/builds", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := &struct {
		Builds []*buildBody `json:"builds"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), list))
	require.Len(t, list.Builds, 1)
	assert.Empty(t, list.Builds[0].Source)

	w = do(router, http.MethodGet, "/api/v1/builds?exploded=true", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), list))
	assert.NotEmpty(t, list.Builds[0].Source)
}

func TestCreateBuildReportsEveryError(t *testing.T) {
	router := newRouter()
	w := do(router, http.MethodPost, "/api/v1/builds", `{
  "ade7880": [
    {"id": "meter", "address": 120, "voltage_a": {"accuracy_decimals": 9}},
    {"id": "other", "irq_pin": {"number": 25, "mode": {"output": true}}}
  ]
}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := &response.MultiError{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), body))
	require.Len(t, body.Errors, 3)
	for _, e := range body.Errors {
		assert.Equal(t, response.ErrCodeInvalidConfiguration, e.Code)
	}
	assert.Contains(t, body.Errors[0].Message, `ade7880 "meter": address`)
	assert.Contains(t, body.Errors[1].Message, "voltage_a.accuracy_decimals")
	assert.Contains(t, body.Errors[2].Message, "irq_pin.mode")
}

func TestCreateBuildGenerationFailure(t *testing.T) {
	router := newRouter()
	w := do(router, http.MethodPost, "/api/v1/builds", `{"ade7880": [{"id": "a"}, {"id": "b"}]}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := &response.MultiError{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, response.ErrCodeGenerationFailed, body.Errors[0].Code)
	assert.Contains(t, body.Errors[0].Message, `generate ade7880 "b": step 3`)
}

func TestCreateBuildBadRequests(t *testing.T) {
	router := newRouter()

	w := do(router, http.MethodPost, "/api/v1/builds", `{"ade7880": [`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := &response.MultiError{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), body))
	assert.Equal(t, response.ErrCodeMalformedJSON, body.Errors[0].Code)

	w = do(router, http.MethodPost, "/api/v1/builds", `{"board": "rp2040"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), body))
	assert.Equal(t, response.ErrCodeUnsupportedBoard, body.Errors[0].Code)
	assert.Contains(t, body.Errors[0].Message, "esp32")
}

func TestDeleteBuild(t *testing.T) {
	router := newRouter()
	w := do(router, http.MethodPost, "/api/v1/builds", manifestJSON, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	created := &buildBody{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), created))
	target := "/api/v1/builds/" + created.ID

	w = do(router, http.MethodDelete, target, "", nil)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)

	w = do(router, http.MethodDelete, target, "", map[string]string{apis.IfMatch: "stale"})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = do(router, http.MethodDelete, target, "", map[string]string{apis.IfMatch: created.Version})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodDelete, target, "", map[string]string{apis.IfMatch: created.Version})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, target, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := &response.MultiError{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), body))
	assert.Equal(t, []response.ErrCode{response.ErrCodeResourceNotFound}, body.Codes())
	assert.Contains(t, body.Errors[0].Message, created.ID)
}

func TestCreateBuildDuplicateName(t *testing.T) {
	router := newRouter()
	w := do(router, http.MethodPost, "/api/v1/builds?name=main", manifestJSON, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(router, http.MethodPost, "/api/v1/builds?name=main", manifestJSON, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	body := &response.MultiError{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), body))
	assert.Equal(t, []response.ErrCode{response.ErrCodeResourceExists}, body.Codes())
	assert.Contains(t, body.Errors[0].Message, `"main"`)

	w = do(router, http.MethodGet, "/api/v1/builds", "", nil)
	list := &struct {
		Builds []buildBody `json:"builds"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), list))
	assert.Len(t, list.Builds, 1)
}

func TestCreateBuildEmptyBody(t *testing.T) {
	router := newRouter()
	w := do(router, http.MethodPost, "/api/v1/builds", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := &response.MultiError{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), body))
	assert.Equal(t, []response.ErrCode{response.ErrCodeRequestBody}, body.Codes())
}
