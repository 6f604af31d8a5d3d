package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/gltfkit/internal/logger"
	"github.com/samcharles93/gltfkit/internal/report"
)

const defaultAccessorLimit = 1000

func (s *Server) handleListDocuments(c *echo.Context) error {
	return c.JSON(http.StatusOK, DocumentList{Object: "list", Data: s.store.List()})
}

func (s *Server) handleCreateDocument(c *echo.Context) error {
	if s.limiter != nil && !s.limiter.Allow() {
		return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "too many uploads, retry later", "")
	}

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, s.maxUpload+1))
	if err != nil {
		return writeBadRequest(c, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(data)) > s.maxUpload {
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error",
			fmt.Sprintf("document exceeds %d bytes", s.maxUpload), "")
	}
	if len(data) == 0 {
		return writeImportError(c, newInvalidRequest("request body is empty"))
	}

	ctx := logger.WithContext(c.Request().Context(), s.log)
	doc, err := s.loader.LoadBytes(ctx, data)
	if err != nil {
		return writeImportError(c, err)
	}
	rep := report.Build(doc)
	info := s.store.Create(doc, rep, len(data), s.clock())
	s.log.Info("stored document", "id", info.ID, "accessors", info.Accessors)
	return c.JSON(http.StatusCreated, DocumentResponse{DocumentInfo: info, Report: rep})
}

func (s *Server) handleGetDocument(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "document not found")
	}
	return c.JSON(http.StatusOK, DocumentResponse{DocumentInfo: rec.Info, Report: rec.Report})
}

func (s *Server) handleDeleteDocument(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "document not found")
	}
	return c.JSON(http.StatusOK, DeleteResponse{ID: id, Object: "document.deleted", Deleted: true})
}

func (s *Server) handleGetAccessor(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "document not found")
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return writeBadRequest(c, "accessor index must be an integer")
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	a, err := rec.Doc.Accessor(index)
	if err != nil {
		return writeNotFound(c, fmt.Sprintf("accessor %d not found", index))
	}

	rows := a.Rows(limit)
	return c.JSON(http.StatusOK, AccessorResponse{
		Index:         index,
		Name:          a.Name,
		Type:          string(a.Type),
		ComponentType: a.ComponentType.String(),
		Count:         a.Count,
		Normalized:    a.Normalized,
		Sparse:        a.Sparse,
		Returned:      len(rows),
		Elements:      rows,
	})
}

func (s *Server) handleExportDocument(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "document not found")
	}
	data, err := rec.Doc.ExportBinary()
	if err != nil {
		return writeImportError(c, err)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "model/gltf-binary")
	res.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Info.ID+".glb"))
	res.Header().Set("Content-Length", strconv.Itoa(len(data)))
	res.WriteHeader(http.StatusOK)
	_, err = res.Write(data)
	return err
}

// parseLimit reads ?limit. Empty uses the default; 0 means every element.
func parseLimit(q string) (int, error) {
	if q == "" {
		return defaultAccessorLimit, nil
	}
	n, err := strconv.Atoi(q)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}
