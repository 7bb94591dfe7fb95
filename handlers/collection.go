package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mongoapi/mongoapi/internal/collection"
	"github.com/mongoapi/mongoapi/internal/collection/service"
	"github.com/mongoapi/mongoapi/pkg/logger"
)

var errNoBody = errors.New("invalid request")

// CollectionHandler exposes the collection operations over HTTP. Every
// response is HTTP 200 carrying an Envelope; failures are reported in the
// envelope, including bodies that do not bind and results that cannot be
// serialized.
type CollectionHandler struct {
	svc *service.Service
}

func NewCollectionHandler(svc *service.Service) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

// Register routes under /:collection
func (h *CollectionHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/:collection/find", h.Find)
	rg.POST("/:collection/insert", h.Insert)
	rg.POST("/:collection/update", h.Update)
	rg.POST("/:collection/find_one_and_update", h.Update)
	rg.POST("/:collection/delete", h.Delete)
}

// Find accepts { filter, projection?, is_many? }
func (h *CollectionHandler) Find(c *gin.Context) {
	var req collection.FindRequest
	if err := bindJSON(c, &req); err != nil {
		respond(c, collection.Failure(err.Error()))
		return
	}
	respond(c, h.svc.Find(c.Request.Context(), c.Param("collection"), req))
}

// Insert accepts a single object or an array of objects
func (h *CollectionHandler) Insert(c *gin.Context) {
	var body interface{}
	if err := bindJSON(c, &body); err != nil {
		respond(c, collection.Failure(err.Error()))
		return
	}
	respond(c, h.svc.Insert(c.Request.Context(), c.Param("collection"), body))
}

// Update accepts { filter, update, is_many? }; also served as find_one_and_update
func (h *CollectionHandler) Update(c *gin.Context) {
	var req collection.UpdateRequest
	if err := bindJSON(c, &req); err != nil {
		respond(c, collection.Failure(err.Error()))
		return
	}
	respond(c, h.svc.Update(c.Request.Context(), c.Param("collection"), req))
}

// Delete accepts { filter, is_many? }
func (h *CollectionHandler) Delete(c *gin.Context) {
	var req collection.DeleteRequest
	if err := bindJSON(c, &req); err != nil {
		respond(c, collection.Failure(err.Error()))
		return
	}
	respond(c, h.svc.Delete(c.Request.Context(), c.Param("collection"), req))
}

// bindJSON decodes like c.ShouldBindJSON but keeps numbers as json.Number,
// so integers above 2^53 reach the store exactly. The driver writes a
// json.Number as int64 when it fits and as a double otherwise.
func bindJSON(c *gin.Context, obj interface{}) error {
	if c.Request == nil || c.Request.Body == nil {
		return errNoBody
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}

// respond serializes env before writing anything, so a result that cannot be
// encoded (NaN or Inf doubles) still reaches the client as a failure envelope.
func respond(c *gin.Context, env collection.Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		logger.Warnw("response not serializable", "path", c.Request.URL.Path, "error", err.Error())
		body, _ = json.Marshal(collection.Failure(err.Error()))
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
