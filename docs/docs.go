// Package docs holds the Swagger description of the import API, served at
// /swagger/index.html. Keep it in step with the @-annotations on the handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/import": {
            "post": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Classifies an uploaded XLSX, XLS or CSV workbook and extracts its records. With apply=true valid records are written to the database.",
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "import"
                ],
                "summary": "Import workbook",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Workbook to import",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "boolean",
                        "default": false,
                        "description": "Write the records to the database",
                        "name": "apply",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/pipeline.RunResult"
                        }
                    },
                    "400": {
                        "description": "Unreadable or unsupported upload",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "413": {
                        "description": "Upload too large",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Validation issues, nothing written",
                        "schema": {
                            "$ref": "#/definitions/handlers.ValidationFailedResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Database not configured",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/import/schemas": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Returns, per record type, the matching threshold, dedup key and accepted header labels",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "import"
                ],
                "summary": "List header schemas",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.SchemasResponse"
                        }
                    }
                }
            }
        },
        "/import/runs": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Returns recorded import runs, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "runs"
                ],
                "summary": "List import runs",
                "parameters": [
                    {
                        "maximum": 100,
                        "minimum": 1,
                        "type": "integer",
                        "default": 20,
                        "description": "Number of runs to return",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "minimum": 0,
                        "type": "integer",
                        "default": 0,
                        "description": "Number of runs to skip",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ListRunsResponse"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Database not configured",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/import/runs/{id}": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "runs"
                ],
                "summary": "Get import run",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Run ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/database.ImportRun"
                        }
                    },
                    "404": {
                        "description": "Run not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Database not configured",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/import/runs/{id}/file": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/octet-stream"
                ],
                "tags": [
                    "runs"
                ],
                "summary": "Download archived upload",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Run ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "The workbook as uploaded",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Run or archived file not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Database not configured",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                }
            }
        },
        "handlers.ValidationFailedResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "result": {
                    "$ref": "#/definitions/pipeline.RunResult"
                }
            }
        },
        "handlers.SchemasResponse": {
            "type": "object",
            "properties": {
                "recordTypes": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/importer.Schema"
                    }
                }
            }
        },
        "handlers.ListRunsResponse": {
            "type": "object",
            "required": [
                "runs",
                "total"
            ],
            "properties": {
                "runs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/database.ImportRun"
                    }
                },
                "total": {
                    "type": "integer"
                }
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "database": {
                    "type": "string"
                },
                "storage": {
                    "type": "string"
                },
                "recordTypes": {
                    "type": "integer"
                }
            }
        },
        "importer.Schema": {
            "type": "object",
            "properties": {
                "type": {
                    "$ref": "#/definitions/types.RecordType"
                },
                "minHits": {
                    "type": "integer"
                },
                "dedupKey": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "fields": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/importer.Field"
                    }
                }
            }
        },
        "importer.Field": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "synonyms": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "pipeline.RunResult": {
            "type": "object",
            "properties": {
                "runId": {
                    "type": "string"
                },
                "filename": {
                    "type": "string"
                },
                "checksum": {
                    "type": "string"
                },
                "storageKey": {
                    "type": "string"
                },
                "fileType": {
                    "type": "string",
                    "enum": [
                        "csv",
                        "xls",
                        "xlsx"
                    ]
                },
                "duplicate": {
                    "type": "boolean"
                },
                "previousRunId": {
                    "type": "string"
                },
                "status": {
                    "$ref": "#/definitions/database.RunStatus"
                },
                "applied": {
                    "type": "boolean"
                },
                "counts": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "import": {
                    "$ref": "#/definitions/types.ImportResult"
                },
                "issues": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/pipeline.Issue"
                    }
                },
                "stats": {
                    "$ref": "#/definitions/database.ApplyStats"
                }
            }
        },
        "pipeline.Issue": {
            "type": "object",
            "properties": {
                "type": {
                    "$ref": "#/definitions/types.RecordType"
                },
                "index": {
                    "type": "integer"
                },
                "field": {
                    "type": "string"
                },
                "value": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "database.RunStatus": {
            "type": "string",
            "enum": [
                "running",
                "completed",
                "rejected",
                "failed"
            ]
        },
        "database.ApplyStats": {
            "type": "object",
            "properties": {
                "products": {
                    "type": "integer"
                },
                "items": {
                    "type": "integer"
                },
                "bom": {
                    "type": "integer"
                },
                "production": {
                    "type": "integer"
                },
                "allocations": {
                    "type": "integer"
                },
                "registeredShops": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "database.ImportRun": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "filename": {
                    "type": "string"
                },
                "checksum": {
                    "type": "string"
                },
                "storage_key": {
                    "type": "string"
                },
                "file_type": {
                    "type": "string"
                },
                "status": {
                    "$ref": "#/definitions/database.RunStatus"
                },
                "applied": {
                    "type": "boolean"
                },
                "counts": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "issue_count": {
                    "type": "integer"
                },
                "error_message": {
                    "type": "string"
                },
                "started_at": {
                    "type": "string"
                },
                "completed_at": {
                    "type": "string"
                }
            }
        },
        "types.RecordType": {
            "type": "string",
            "enum": [
                "products",
                "items",
                "bom",
                "production",
                "allocations"
            ]
        },
        "types.ImportResult": {
            "type": "object",
            "properties": {
                "products": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "additionalProperties": {
                            "type": "string"
                        }
                    }
                },
                "items": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "additionalProperties": {
                            "type": "string"
                        }
                    }
                },
                "bom": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "additionalProperties": {
                            "type": "string"
                        }
                    }
                },
                "production": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "additionalProperties": {
                            "type": "string"
                        }
                    }
                },
                "allocations": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "additionalProperties": {
                            "type": "string"
                        }
                    }
                },
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "sheets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/types.SheetReport"
                    }
                }
            }
        },
        "types.SheetReport": {
            "type": "object",
            "properties": {
                "sheet": {
                    "type": "string"
                },
                "rows": {
                    "type": "integer"
                },
                "outcome": {
                    "type": "string",
                    "enum": [
                        "empty",
                        "unmatched",
                        "single",
                        "multi_table"
                    ]
                },
                "matches": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/types.TypeMatch"
                    }
                },
                "emitted": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/types.RecordType"
                    }
                }
            }
        },
        "types.TypeMatch": {
            "type": "object",
            "properties": {
                "type": {
                    "$ref": "#/definitions/types.RecordType"
                },
                "orientation": {
                    "type": "string",
                    "enum": [
                        "rows",
                        "cols"
                    ]
                },
                "headerRow": {
                    "type": "integer"
                },
                "hits": {
                    "type": "integer"
                },
                "threshold": {
                    "type": "integer"
                },
                "dataRows": {
                    "type": "integer"
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-Internal-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Bakery Import API",
	Description:      "Imports bakery planning workbooks (raw materials, items, recipes, production plans and shop deliveries) from loosely structured Excel and CSV files.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
