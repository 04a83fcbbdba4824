package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/pkg/response"
)

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: name, Message: "must be a positive integer"}})
	}
	return id, nil
}

// listRequest reads limit, offset and after and keys the response cache by path and full query.
func listRequest(c *gin.Context) (service.ListRequest, error) {
	query := c.Request.URL.Query()
	page, err := pagination.ParseRequest(query)
	if err != nil {
		return service.ListRequest{}, err
	}
	return service.ListRequest{Key: pagination.CacheKey(c.Request.URL.Path, query), Page: page}, nil
}

// bindJSON decodes the body, reporting malformed JSON as invalid input.
// An empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		return service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "malformed JSON"}})
	}
	return nil
}

// listed runs a list use case and writes the page.
func listed[T any](c *gin.Context, fn func(service.ListRequest) (pagination.Page[T], error)) {
	lr, err := listRequest(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	page, err := fn(lr)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, page)
}
