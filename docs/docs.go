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
        "/api/v1/account": {
            "get": {
                "description": "Returns the vesting schedules of one account with released and still locked amounts.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "vesting"
                ],
                "summary": "Get Account",
                "operationId": "api_v1_get_account",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account to audit.",
                        "name": "address",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/main.AccountResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/vesting.AuditError"
                        }
                    }
                }
            }
        },
        "/api/v1/vestingReport": {
            "get": {
                "description": "Audit every account with a vesting schedule at the latest finalized block.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "vesting"
                ],
                "summary": "Get Vesting Report",
                "operationId": "api_v1_get_vesting_report",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/main.ReportResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/vesting.AuditError"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "main.AccountResponse": {
            "type": "object",
            "properties": {
                "account": {
                    "type": "string"
                },
                "fully_released": {
                    "type": "boolean"
                },
                "reference_block": {
                    "type": "string"
                },
                "released": {
                    "type": "string"
                },
                "released_display": {
                    "type": "string"
                },
                "schedules": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/main.ScheduleView"
                    }
                },
                "still_locked": {
                    "type": "string"
                },
                "still_locked_display": {
                    "type": "string"
                }
            }
        },
        "main.LockedAccountView": {
            "type": "object",
            "properties": {
                "account": {
                    "type": "string"
                },
                "still_locked": {
                    "type": "string"
                },
                "still_locked_display": {
                    "type": "string"
                }
            }
        },
        "main.ReportResponse": {
            "type": "object",
            "properties": {
                "accounts": {
                    "type": "integer"
                },
                "fully_released": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "partially_locked": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/main.LockedAccountView"
                    }
                },
                "reference_block": {
                    "type": "string"
                },
                "schedules": {
                    "type": "integer"
                },
                "total_released": {
                    "type": "string"
                },
                "total_released_display": {
                    "type": "string"
                },
                "total_still_locked": {
                    "type": "string"
                },
                "total_still_locked_display": {
                    "type": "string"
                }
            }
        },
        "main.ScheduleView": {
            "type": "object",
            "properties": {
                "locked": {
                    "type": "string"
                },
                "per_block": {
                    "type": "string"
                },
                "released": {
                    "type": "string"
                },
                "starting_block": {
                    "type": "string"
                },
                "still_locked": {
                    "type": "string"
                }
            }
        },
        "vesting.AuditError": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "Vesting Audit",
	Description:      "Vesting Audit reads linear vesting schedules from an indexed blockchain and reports released and still locked amounts at the latest finalized block.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
