package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"customerhub-backend/models"
	"customerhub-backend/repository"
	"customerhub-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

// Store is the persistence contract the controllers depend on.
// *repository.Repository satisfies it.
type Store[T models.Entity] interface {
	GetAll(ctx context.Context, filters models.Filters) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Insert(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id uuid.UUID, patch models.Patch) (T, error)
	Delete(ctx context.Context, id uuid.UUID) (T, error)
}

// OutputContractError means a stored row does not fit the declared
// response shape. It is never coerced into a response.
type OutputContractError struct {
	Entity string
	Err    error
}

func (e *OutputContractError) Error() string {
	return fmt.Sprintf("%s output contract violated: %v", e.Entity, e.Err)
}

func (e *OutputContractError) Unwrap() error { return e.Err }

// shape converts an entity's canonical representation into the output
// contract O. Keys the contract does not declare are rejected.
func shape[O any](entity string, e models.Entity) (O, error) {
	var out O
	raw, err := json.Marshal(e.AsJSON())
	if err != nil {
		return out, &OutputContractError{Entity: entity, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, &OutputContractError{Entity: entity, Err: err}
	}
	if err := utils.ValidateOutput(out); err != nil {
		return out, &OutputContractError{Entity: entity, Err: err}
	}
	return out, nil
}

func respond[O any](c *gin.Context, logger *slog.Logger, status int, entity string, e models.Entity) {
	out, err := shape[O](entity, e)
	if err != nil {
		respondError(c, logger, entity, "", err)
		return
	}
	c.JSON(status, out)
}

func respondList[O any, T models.Entity](c *gin.Context, logger *slog.Logger, entity string, rows []T) {
	out := make([]O, 0, len(rows))
	for _, row := range rows {
		shaped, err := shape[O](entity, row)
		if err != nil {
			respondError(c, logger, entity, "", err)
			return
		}
		out = append(out, shaped)
	}
	c.JSON(http.StatusOK, out)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, utils.FieldErrors(err))
		return false
	}
	return true
}

// patchBody holds the keys a PATCH body carried, so an explicit null can be
// told apart from an omitted field.
type patchBody map[string]json.RawMessage

func (b patchBody) isNull(key string) bool {
	raw, ok := b[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// bindPatch is bindJSON for partial updates. An empty body is an empty
// patch; null is refused for every writable field the schema marks as not
// nullable.
func bindPatch(c *gin.Context, dst any, schema *models.Schema) (patchBody, bool) {
	body := patchBody{}
	if err := c.ShouldBindBodyWith(dst, binding.JSON); err != nil {
		if errors.Is(err, io.EOF) {
			return body, true
		}
		utils.RespondWithError(c, http.StatusUnprocessableEntity, utils.FieldErrors(err))
		return nil, false
	}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, utils.FieldErrors(err))
		return nil, false
	}

	var errs []utils.FieldError
	for _, f := range schema.Fields {
		if f.Writable && !f.Nullable && body.isNull(f.Name) {
			errs = append(errs, utils.FieldError{Field: f.Name, Kind: "null", Message: "value must not be null"})
		}
	}
	if len(errs) > 0 {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, errs)
		return nil, false
	}
	return body, true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, utils.QueryFieldErrors(err, c.Request.URL.Query()))
		return false
	}
	return true
}

// parseID reads the :id path segment. A segment that is not a uuid cannot
// name a stored row, so it is answered like any other missing id.
func parseID(c *gin.Context, entity string) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusNotFound, notFoundDetail(entity, raw))
		return uuid.Nil, false
	}
	return id, true
}

func notFoundDetail(entity, id string) string {
	return fmt.Sprintf("%s with id: %s not found", entity, id)
}

func respondError(c *gin.Context, logger *slog.Logger, entity, id string, err error) {
	var refErr *repository.ReferenceError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, notFoundDetail(entity, id))
	case errors.As(err, &refErr):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, []utils.FieldError{{
			Field:   refErr.Field,
			Kind:    "reference",
			Message: refErr.Error(),
		}})
	default:
		logger.Error("request failed",
			slog.String("entity", entity),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal Server Error")
	}
}
