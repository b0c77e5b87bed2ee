package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func askDocumentTool() mcp.Tool {
	return mcp.NewTool("ask_document",
		mcp.WithDescription("Ask a question against an uploaded document, with chat history context"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Owning-user handle; scopes documents and chat sessions"),
		),
		mcp.WithString("chat_id",
			mcp.Description("Existing chat session to continue; omit to answer without history"),
		),
	)
}

func uploadDocumentTool() mcp.Tool {
	return mcp.NewTool("upload_document",
		mcp.WithDescription("Upload a document (pdf, docx, xlsx, png, jpg) for processing; identical re-uploads are deduplicated"),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("Original file name; the extension selects the parser"),
		),
		mcp.WithString("file_base64",
			mcp.Required(),
			mcp.Description("File content, base64 encoded"),
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Owning-user handle"),
		),
	)
}

func getDocumentTool() mcp.Tool {
	return mcp.NewTool("get_document",
		mcp.WithDescription("Fetch processing status and metadata of an uploaded document"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID returned by upload_document"),
		),
	)
}
