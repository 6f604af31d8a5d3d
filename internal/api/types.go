package api

import "github.com/samcharles93/gltfkit/internal/report"

type DocumentInfo struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
	Bytes     int    `json:"bytes"`
	Binary    bool   `json:"binary"`
	Accessors int    `json:"accessors"`
}

type DocumentResponse struct {
	DocumentInfo
	Report *report.Report `json:"report"`
}

type DocumentList struct {
	Object string         `json:"object"`
	Data   []DocumentInfo `json:"data"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type AccessorResponse struct {
	Index         int         `json:"index"`
	Name          string      `json:"name,omitempty"`
	Type          string      `json:"type"`
	ComponentType string      `json:"component_type"`
	Count         int         `json:"count"`
	Normalized    bool        `json:"normalized"`
	Sparse        bool        `json:"sparse"`
	Returned      int         `json:"returned"`
	Elements      [][]float64 `json:"elements"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}
