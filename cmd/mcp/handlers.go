package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
)

func handleAskDocument(responder ports.QueryResponder) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		userID, err := request.RequireString("user_id")
		if err != nil || strings.TrimSpace(userID) == "" {
			return mcp.NewToolResultError("user_id parameter is required"), nil
		}

		result, err := responder.Respond(ctx, ports.RespondRequest{
			UserID:    userID,
			RequestID: uuid.NewString(),
			ChatID:    request.GetString("chat_id", ""),
			Query:     query,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("respond failed: %v", err)), nil
		}
		return mcp.NewToolResultText(result.Response), nil
	}
}

func handleUploadDocument(ingestor ports.DocumentIngestor) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fileName, err := request.RequireString("file_name")
		if err != nil || strings.TrimSpace(fileName) == "" {
			return mcp.NewToolResultError("file_name parameter is required"), nil
		}
		encoded, err := request.RequireString("file_base64")
		if err != nil || encoded == "" {
			return mcp.NewToolResultError("file_base64 parameter is required"), nil
		}
		userID, err := request.RequireString("user_id")
		if err != nil || strings.TrimSpace(userID) == "" {
			return mcp.NewToolResultError("user_id parameter is required"), nil
		}

		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("file_base64 is not valid base64: %v", err)), nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
		fileType := domain.FileType(ext)
		if !fileType.IsDocument() && !fileType.IsImage() {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported file extension %q", ext)), nil
		}

		doc, created, err := ingestor.Upload(ctx, userID, ports.UploadedFile{
			Filename: fileName,
			FileType: fileType,
			Data:     data,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("upload failed: %v", err)), nil
		}

		if !created {
			return mcp.NewToolResultText(fmt.Sprintf(
				"Identical document already stored.\nID: %s\nStatus: %s", doc.ID, doc.Status)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Document accepted for processing.\nID: %s\nStatus: %s", doc.ID, doc.Status)), nil
	}
}

func handleGetDocument(documents ports.DocumentReader) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil || strings.TrimSpace(docID) == "" {
			return mcp.NewToolResultError("document_id parameter is required"), nil
		}

		doc, err := documents.GetByID(ctx, docID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("document not found: %v", err)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "ID: %s\n", doc.ID)
		fmt.Fprintf(&b, "Name: %s\n", doc.OriginalName)
		fmt.Fprintf(&b, "Type: %s\n", doc.FileType)
		fmt.Fprintf(&b, "Status: %s\n", doc.Status)
		fmt.Fprintf(&b, "Pages: %d\n", doc.Metadata.TotalPages)
		if doc.Error != "" {
			fmt.Fprintf(&b, "Error: %s\n", doc.Error)
		}
		if len(doc.Metadata.Sections) > 0 {
			fmt.Fprintf(&b, "Sections: %s\n", strings.Join(doc.Metadata.Sections, ", "))
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}
