package query

// matchQuerySchemaJSON is the JSON Schema used to validate an incoming
// MatchQuery document before it is parsed into a Query tree: catching a
// malformed document (wrong tag, wrong payload shape) with a descriptive
// error instead of a cryptic json.Unmarshal failure deep in unmarshalTag.
const matchQuerySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "intExpr": {
      "type": "object",
      "minProperties": 1,
      "maxProperties": 1,
      "properties": {
        "eq": {"type": "integer"},
        "ne": {"type": "integer"},
        "lt": {"type": "integer"},
        "le": {"type": "integer"},
        "gt": {"type": "integer"},
        "ge": {"type": "integer"},
        "between": {"type": "array", "items": {"type": "integer"}, "minItems": 2, "maxItems": 2},
        "one_of": {"type": "array", "items": {"type": "integer"}}
      }
    },
    "floatExpr": {
      "type": "object",
      "minProperties": 1,
      "maxProperties": 1,
      "properties": {
        "eq": {"type": "number"},
        "ne": {"type": "number"},
        "lt": {"type": "number"},
        "le": {"type": "number"},
        "gt": {"type": "number"},
        "ge": {"type": "number"},
        "between": {"type": "array", "items": {"type": "number"}, "minItems": 2, "maxItems": 2},
        "one_of": {"type": "array", "items": {"type": "number"}}
      }
    },
    "strExpr": {
      "type": "object",
      "minProperties": 1,
      "maxProperties": 1,
      "properties": {
        "eq": {"type": "string"},
        "ne": {"type": "string"},
        "contains": {"type": "string"},
        "not_contains": {"type": "string"},
        "starts_with": {"type": "string"},
        "ends_with": {"type": "string"},
        "one_of": {"type": "array", "items": {"type": "string"}}
      }
    },
    "query": {
      "type": "object",
      "minProperties": 1,
      "maxProperties": 1,
      "properties": {
        "pass": {"type": "null"},
        "object.id": {"$ref": "#/definitions/intExpr"},
        "creator": {"$ref": "#/definitions/strExpr"},
        "label": {"$ref": "#/definitions/strExpr"},
        "confidence.defined": {"type": "null"},
        "confidence": {"$ref": "#/definitions/floatExpr"},
        "track.id.defined": {"type": "null"},
        "track.id": {"$ref": "#/definitions/intExpr"},
        "parent.defined": {"type": "null"},
        "parent.id": {"$ref": "#/definitions/intExpr"},
        "parent.creator": {"$ref": "#/definitions/strExpr"},
        "parent.label": {"$ref": "#/definitions/strExpr"},
        "attribute.defined": {"type": "array", "items": {"type": "string"}, "minItems": 2, "maxItems": 2},
        "attributes.empty": {"type": "null"},
        "attributes.jmes_query": {"type": "string"},
        "user_defined_object_predicate": {"type": "array", "items": {"type": "string"}, "minItems": 2, "maxItems": 2},
        "eval": {"type": "string"},
        "and": {"type": "array", "items": {"$ref": "#/definitions/query"}},
        "or": {"type": "array", "items": {"$ref": "#/definitions/query"}},
        "not": {"$ref": "#/definitions/query"},
        "with_children": {"type": "array", "items": [{"$ref": "#/definitions/query"}, {"$ref": "#/definitions/intExpr"}], "minItems": 2, "maxItems": 2}
      },
      "additionalProperties": {"$ref": "#/definitions/floatExpr"}
    }
  },
  "$ref": "#/definitions/query"
}`
