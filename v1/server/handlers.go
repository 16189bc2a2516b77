package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Aleph-Alpha/ragcore/v1/chat"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
)

func (s *Server) handleHealth(c echo.Context) error {
	h := s.docs.Health(c.Request().Context())
	code := http.StatusOK
	if h.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, h)
}

func (s *Server) handleStatus(c echo.Context) error {
	st, err := s.docs.Status(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) handleChat(c echo.Context) error {
	req := chat.Request{UseRAG: true}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.UserID = userID(c)

	resp, err := s.chats.Chat(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListSessions(c echo.Context) error {
	sessions, err := s.chats.Sessions(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleListMessages(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	msgs, err := s.chats.Messages(c.Request().Context(), id, userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.chats.DeleteSession(c.Request().Context(), id, userID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Chat session deleted"})
}

func (s *Server) handleCollectionInfo(c echo.Context) error {
	info, err := s.docs.UserCollectionInfo(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleUploadText(c echo.Context) error {
	var req TextDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := s.docs.Ingest(c.Request().Context(), rag.IngestRequest{
		OwnerID:      userID(c),
		Title:        req.Title,
		Content:      req.Content,
		FilePath:     req.FilePath,
		FileType:     req.FileType,
		ChunkSize:    req.ChunkSize,
		ChunkOverlap: req.ChunkOverlap,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UploadResponse{
		DocumentID: res.Document.ID,
		Title:      res.Document.Title,
		Status:     "processed",
		Message:    "Document successfully processed and added to RAG",
		Chunks:     res.Chunks,
	})
}

func (s *Server) handleListDocuments(c echo.Context) error {
	docs, err := s.docs.Documents(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

func (s *Server) handleGetDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	doc, err := s.docs.Document(c.Request().Context(), id, userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := s.docs.DeleteDocument(c.Request().Context(), id, userID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Document deleted successfully"})
}
