package build

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/mod/sumdb"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
	"meterbind/pkg/apis"
	"meterbind/pkg/apis/response"
	"meterbind/pkg/board"
	"meterbind/pkg/protocol/ade7880"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
	v1 "meterbind/pkg/v1"
)

func InstallHandler(group *gin.RouterGroup, mgr *Manager) {
	group.POST("/builds", createBuild(mgr))
	group.GET("/builds", listBuilds(mgr))
	group.GET("/builds/:id", getBuildById(mgr))
	group.DELETE("/builds/:id", deleteBuild(mgr))
}

func createBuild(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Request.Body.Close()

		manifest := &v1.Manifest{}
		if err := c.ShouldBindJSON(manifest); err != nil {
			klog.V(2).InfoS("Failed to parse manifest", "err", err)
			if errors.Is(err, io.EOF) {
				c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrRequestBody))
			} else {
				c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrMalformedJSON))
			}
			return
		}

		name := c.Query(apis.Name)
		b, err := mgr.CreateBuild(name, manifest)
		switch {
		case err == nil:
		case errors.Is(err, apis.ErrInternal):
			c.Status(http.StatusInternalServerError)
			return
		case errors.Is(err, os.ErrExist):
			c.JSON(http.StatusConflict, response.NewMultiError(response.ErrResourceExists(fmt.Sprintf("build %q", name))))
			return
		default:
			me := response.NewMultiError(responseErrors(err, manifest)...)
			klog.V(2).InfoS("Rejected build", "name", name, "codes", me.Codes())
			c.JSON(http.StatusBadRequest, me)
			return
		}

		c.Header(apis.ETag, b.GetVersion())
		c.Header(apis.Location, fmt.Sprintf("https://%s%s/%s", c.Request.Host, c.Request.URL.Path, b.GetID()))
		c.JSON(http.StatusCreated, b)
	}
}

func listBuilds(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		exploded, _ := strconv.ParseBool(c.Query(apis.Exploded))
		c.JSON(http.StatusOK, &BuildList{Builds: mgr.ListBuilds(exploded)})
	}
}

func getBuildById(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		exploded := true
		if v := c.Query(apis.Exploded); len(v) > 0 {
			exploded, _ = strconv.ParseBool(v)
		}
		b, err := mgr.GetBuildById(c.Param("id"), exploded)
		if err != nil {
			if os.IsNotExist(err) {
				c.JSON(http.StatusNotFound, response.NewMultiError(response.ErrResourceNotFound(fmt.Sprintf("build %q", c.Param("id")))))
			} else {
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		c.Header(apis.ETag, b.GetVersion())
		c.JSON(http.StatusOK, b)
	}
}

func deleteBuild(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		eTag := c.GetHeader(apis.IfMatch)
		if len(eTag) == 0 {
			c.Status(http.StatusPreconditionRequired)
			return
		}
		b, err := mgr.DeleteBuild(c.Param("id"), eTag)
		if err != nil {
			switch {
			case os.IsNotExist(err):
				c.JSON(http.StatusNotFound, response.NewMultiError(response.ErrResourceNotFound(fmt.Sprintf("build %q", c.Param("id")))))
			case errors.Is(err, apis.ErrMismatch):
				c.Status(http.StatusPreconditionFailed)
			case errors.Is(err, sumdb.ErrWriteConflict):
				c.Status(http.StatusConflict)
			default:
				c.Status(http.StatusInternalServerError)
			}
			return
		}
		c.JSON(http.StatusOK, fold(b))
	}
}

// responseErrors flattens a build failure into one response error per
// rejected field or failed record.
func responseErrors(err error, manifest *v1.Manifest) []error {
	list := []error{err}
	if agg, ok := err.(utilerrors.Aggregate); ok {
		list = agg.Errors()
	}

	errs := make([]error, 0, len(list))
	for _, e := range list {
		var verr *runtime.ValidationError
		var gerr *ade7880.GenerationError
		switch {
		case errors.As(e, &verr):
			for _, cause := range verr.Causes {
				errs = append(errs, response.ErrInvalidConfiguration(fmt.Sprintf("%s %q: %s", verr.DeviceType, verr.ID, cause.Error()), cause))
			}
		case errors.As(e, &gerr):
			errs = append(errs, response.ErrGenerationFailed(gerr))
		case errors.Is(e, constant.ErrUnknownBoard):
			errs = append(errs, response.ErrUnsupportedBoard(manifest.Board, board.Names()))
		default:
			errs = append(errs, e)
		}
	}
	return errs
}
