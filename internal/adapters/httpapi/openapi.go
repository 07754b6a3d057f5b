package httpapi

import (
	"net/http"

	"github.com/Guilhem-Bonnet/streamplan/internal/buildinfo"
	"github.com/Guilhem-Bonnet/streamplan/internal/httpjson"
)

// handleOpenAPI renvoie la description OpenAPI de l'API.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}
	jsonList := func(itemRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"headers": map[string]any{
				"ETag": map[string]any{"schema": map[string]any{"type": "string"}},
			},
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"type": "array", "items": itemSchema(itemRef)},
				},
			},
		}
	}
	jsonErr := map[string]any{
		"description": "Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}
	notModified := map[string]any{"description": "Not modified (If-None-Match)"}
	coverageMap := map[string]any{
		"type":                 "object",
		"description":          "Nom du package -> couverture.",
		"additionalProperties": map[string]any{"$ref": "#/components/schemas/Coverage"},
	}
	flag := func(name, desc string) map[string]any {
		return map[string]any{
			"name": name, "in": "query", "description": desc,
			"schema": map[string]any{"type": "string", "enum": []any{"0", "1", "true", "false"}},
		}
	}
	jsonArray := func(name, desc string) map[string]any {
		return map[string]any{
			"name": name, "in": "query", "description": desc,
			"schema": map[string]any{"type": "string", "example": `["Bayern München"]`},
		}
	}
	notFound := map[string]any{
		"description": "Équipe, compétition ou ID de match (games/items) inconnu",
		"content":     jsonErr["content"],
	}
	planResponses := map[string]any{
		"200": jsonOK("#/components/schemas/PlanResponse"),
		"400": jsonErr,
		"404": notFound,
		"422": jsonErr,
		"503": jsonErr,
		"500": jsonErr,
	}
	planQuery := []any{
		jsonArray("games", "IDs de matchs, tableau JSON (alias: items). Un ID absent du catalogue renvoie 404."),
		jsonArray("teams", "Noms d'équipes, tableau JSON."),
		jsonArray("tournaments", "Noms de compétitions, tableau JSON."),
		flag("live", "Couvrir les matchs en direct."),
		flag("highlights", "Couvrir les résumés."),
		flag("only_monthly_billing", "Facturation mensuelle au lieu d'annuelle."),
		flag("all_games", "Tous les matchs du catalogue (alias: all_items)."),
	}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "streamplan API",
			"version": buildinfo.Current().Version,
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"OpenAPIDocument": map[string]any{
					"type":                 "object",
					"additionalProperties": true,
				},
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
						"code":  map[string]any{"type": "string", "enum": []any{"infeasible", "search_budget_exceeded"}},
					},
					"required": []any{"error"},
				},
				"Coverage": map[string]any{
					"type": "string",
					"enum": []any{"FULL", "PARTIAL", "NONE"},
				},
				"Game": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":              map[string]any{"type": "integer"},
						"team_home":       map[string]any{"type": "string"},
						"team_away":       map[string]any{"type": "string"},
						"starts_at":       map[string]any{"type": "string"},
						"tournament_name": map[string]any{"type": "string"},
					},
				},
				"Package": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                  map[string]any{"type": "integer"},
						"name":                map[string]any{"type": "string"},
						"monthly_price_cents": map[string]any{"type": "integer", "nullable": true},
						"monthly_price_yearly_subscription_in_cents": map[string]any{"type": "integer", "nullable": true},
					},
				},
				"RankedPackage": map[string]any{
					"allOf": []any{
						map[string]any{"$ref": "#/components/schemas/Package"},
						map[string]any{
							"type": "object",
							"properties": map[string]any{
								"selected": map[string]any{"type": "boolean"},
								"covered":  map[string]any{"type": "integer"},
								"weight":   map[string]any{"type": "number", "format": "double"},
							},
						},
					},
				},
				"Row": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"key":                          map[string]any{"type": "string"},
						"provider_coverage":            coverageMap,
						"provider_coverage_highlights": coverageMap,
						"sub_rows": map[string]any{
							"type":  "array",
							"items": map[string]any{"$ref": "#/components/schemas/Row"},
						},
					},
				},
				"PlanRequest": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"items": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
						"games": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "integer"},
							"description": "IDs de matchs. Chaque ID est validé: inconnu = 404.",
						},
						"teams":                map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"tournaments":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"live":                 map[string]any{"type": "boolean"},
						"highlights":           map[string]any{"type": "boolean"},
						"only_monthly_billing": map[string]any{"type": "boolean"},
						"all_items":            map[string]any{"type": "boolean"},
						"all_games":            map[string]any{"type": "boolean"},
					},
					"additionalProperties": false,
				},
				"SearchStats": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"candidates":      map[string]any{"type": "integer"},
						"after_dominance": map[string]any{"type": "integer"},
						"seeds":           map[string]any{"type": "integer"},
						"expansions":      map[string]any{"type": "integer"},
						"pruned":          map[string]any{"type": "integer"},
					},
				},
				"PlanResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                   map[string]any{"type": "string"},
						"billing":              map[string]any{"type": "string", "enum": []any{"yearly", "monthly"}},
						"total_price_cents":    map[string]any{"type": "integer"},
						"result":               map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/Package"}},
						"preselected":          map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
						"packages":             map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/RankedPackage"}},
						"rows":                 map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/Row"}},
						"uncovered":            map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
						"uncovered_highlights": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
						"stats":                map[string]any{"$ref": "#/components/schemas/SearchStats"},
						"cached":               map[string]any{"type": "boolean"},
					},
					"required": []any{"id", "billing", "total_price_cents", "result", "packages", "rows"},
				},
				"PlannerStats": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"outcomes":       map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "integer"}},
						"in_flight":      map[string]any{"type": "integer"},
						"waiting":        map[string]any{"type": "integer"},
						"max_concurrent": map[string]any{"type": "integer"},
						"cache_entries":  map[string]any{"type": "integer"},
					},
				},
				"Settings": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"max_concurrent": map[string]any{"type": "integer", "minimum": 1},
					},
					"additionalProperties": false,
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/openapi.json": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/OpenAPIDocument")}},
			},
			"/api/v1/events": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "SSE (plan.completed, plan.infeasible, plan.failed)"}}},
			},
			"/api/v1/stats": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/PlannerStats")}},
			},
			"/api/v1/teams": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonList("string"), "304": notModified}},
			},
			"/api/v1/tournaments": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonList("string"), "304": notModified}},
			},
			"/api/v1/games": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonList("#/components/schemas/Game"), "304": notModified}},
			},
			"/api/v1/packages": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonList("#/components/schemas/Package"), "304": notModified}},
			},
			"/api/v1/plan": map[string]any{
				"get": map[string]any{
					"parameters": planQuery,
					"responses":  planResponses,
				},
				"post": map[string]any{
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{"$ref": "#/components/schemas/PlanRequest"},
							},
						},
					},
					"responses": planResponses,
				},
			},
			"/api/v1/settings": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Settings")},
				},
				"put": map[string]any{
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{"$ref": "#/components/schemas/Settings"},
							},
						},
					},
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/Settings"),
						"400": jsonErr,
					},
				},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}

// itemSchema: "string" pour un type simple, sinon une référence.
func itemSchema(ref string) map[string]any {
	if ref == "string" {
		return map[string]any{"type": "string"}
	}
	return map[string]any{"$ref": ref}
}
