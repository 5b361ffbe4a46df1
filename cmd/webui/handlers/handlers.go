package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tanishgpt/backendclient"
	"tanishgpt/cmd/webui/dto"
	"tanishgpt/internal/trace"
)

// respondError maps client failures onto gateway responses. Backend
// statuses pass through; transport failures become 502 so the browser
// can tell "backend said no" from "backend unreachable".
func respondError(c *gin.Context, err error) {
	var httpErr *backendclient.HTTPError
	if errors.As(err, &httpErr) {
		c.JSON(httpErr.StatusCode, dto.ErrorResponseDTO{Error: httpErr.Body})
		return
	}
	c.JSON(http.StatusBadGateway, dto.ErrorResponseDTO{Error: err.Error()})
}

func ChatHandler(client *backendclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChatRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
			return
		}

		ctx := trace.NewRequest(c.Request.Context())
		resp, err := client.Chat(ctx, backendclient.ChatParams{
			Message:    req.Message,
			SessionID:  req.SessionID,
			TopN:       req.TopN,
			DeepSearch: req.DeepSearch,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func UploadHandler(client *backendclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "missing file field"})
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		defer f.Close()

		ctx := trace.NewRequest(c.Request.Context())
		ack, err := client.UploadDocument(ctx, fileHeader.Filename, f)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, ack)
	}
}

func ListSessionsHandler(client *backendclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := client.ListSessions(trace.NewRequest(c.Request.Context()))
		if err != nil {
			respondError(c, err)
			return
		}
		if sessions == nil {
			sessions = []backendclient.Session{}
		}
		c.JSON(http.StatusOK, sessions)
	}
}

func CreateSessionHandler(client *backendclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := client.CreateSession(trace.NewRequest(c.Request.Context()))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sess)
	}
}

func SessionMessagesHandler(client *backendclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := client.SessionMessages(trace.NewRequest(c.Request.Context()), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if records == nil {
			records = []backendclient.HistoryRecord{}
		}
		c.JSON(http.StatusOK, records)
	}
}

func DeleteSessionHandler(client *backendclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := client.DeleteSession(trace.NewRequest(c.Request.Context()), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "deleted"})
	}
}
