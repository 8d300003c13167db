package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("GET /swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Bank Ledger API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Bank Ledger API",
    "version": "1.0.0"
  },
  "security": [{"BasicAuth": []}],
  "paths": {
    "/accounts": {
      "post": {
        "summary": "Open account",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["customerId", "branchId", "type"],
                "properties": {
                  "customerId": {"type": "integer", "format": "int64"},
                  "branchId": {"type": "integer", "format": "int64"},
                  "type": {"type": "string", "enum": ["SAVINGS", "CURRENT"]},
                  "openDate": {"type": "string", "format": "date-time"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Account opened with a zero balance"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/accounts/{id}": {
      "get": {
        "summary": "Get account",
        "parameters": [{"$ref": "#/components/parameters/AccountID"}],
        "responses": {
          "200": {"description": "Account"},
          "404": {"description": "ACCOUNT_NOT_FOUND"}
        }
      }
    },
    "/accounts/{id}/status": {
      "post": {
        "summary": "Freeze, close or reactivate an account",
        "parameters": [{"$ref": "#/components/parameters/AccountID"}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["status"],
                "properties": {
                  "status": {"type": "string", "enum": ["ACTIVE", "FROZEN", "CLOSED"]}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Status updated"},
          "400": {"description": "Validation error"},
          "404": {"description": "ACCOUNT_NOT_FOUND"}
        }
      }
    },
    "/accounts/{id}/postings": {
      "post": {
        "summary": "Post a credit or debit",
        "parameters": [{"$ref": "#/components/parameters/AccountID"}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["kind", "amount"],
                "properties": {
                  "kind": {"type": "string", "enum": ["CREDIT", "DEBIT"]},
                  "amount": {"type": "string", "example": "5000.00"},
                  "description": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Posting applied"},
          "400": {"description": "INVALID_AMOUNT or validation error"},
          "404": {"description": "ACCOUNT_NOT_FOUND"},
          "409": {"description": "ACCOUNT_INACTIVE"},
          "422": {"description": "INSUFFICIENT_FUNDS"},
          "503": {"description": "BUSY"},
          "500": {"description": "STORAGE_FAILURE"}
        }
      }
    },
    "/transfers": {
      "post": {
        "summary": "Transfer between two accounts",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["fromAccountId", "toAccountId", "amount"],
                "properties": {
                  "fromAccountId": {"type": "integer", "format": "int64"},
                  "toAccountId": {"type": "integer", "format": "int64"},
                  "amount": {"type": "string", "example": "20000.00"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Transfer committed"},
          "400": {"description": "SAME_ACCOUNT, INVALID_AMOUNT or validation error"},
          "404": {"description": "ACCOUNT_NOT_FOUND"},
          "409": {"description": "ACCOUNT_INACTIVE"},
          "422": {"description": "INSUFFICIENT_FUNDS"},
          "503": {"description": "BUSY"},
          "500": {"description": "STORAGE_FAILURE"}
        }
      }
    },
    "/accounts/{id}/statement": {
      "get": {
        "summary": "Transactions in a time range, oldest first",
        "parameters": [
          {"$ref": "#/components/parameters/AccountID"},
          {"name": "from", "in": "query", "schema": {"type": "string", "format": "date-time"}},
          {"name": "to", "in": "query", "schema": {"type": "string", "format": "date-time"}}
        ],
        "responses": {
          "200": {"description": "Statement"},
          "400": {"description": "Validation error"},
          "404": {"description": "ACCOUNT_NOT_FOUND"}
        }
      }
    },
    "/accounts/{id}/reconciliation": {
      "get": {
        "summary": "Compare the balance with the signed sum of the log",
        "parameters": [{"$ref": "#/components/parameters/AccountID"}],
        "responses": {
          "200": {"description": "Reconciliation report"},
          "404": {"description": "ACCOUNT_NOT_FOUND"},
          "503": {"description": "BUSY"}
        }
      },
      "post": {
        "summary": "Rebuild the balance from the log",
        "parameters": [{"$ref": "#/components/parameters/AccountID"}],
        "responses": {
          "200": {"description": "Reconciliation report, repaired if drift was found"},
          "404": {"description": "ACCOUNT_NOT_FOUND"},
          "503": {"description": "BUSY"}
        }
      }
    }
  },
  "components": {
    "parameters": {
      "AccountID": {
        "name": "id",
        "in": "path",
        "required": true,
        "schema": {"type": "integer", "format": "int64"}
      }
    },
    "securitySchemes": {
      "BasicAuth": {
        "type": "http",
        "scheme": "basic"
      }
    }
  }
}`
