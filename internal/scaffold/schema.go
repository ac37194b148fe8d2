package scaffold

// definitionSchema is the JSON Schema for service-definition documents.
// Naming conventions and the primary-key requirement are checked separately
// because draft-07 cannot express them readably.
const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Service Definition",
  "type": "object",
  "required": ["service", "database", "fields"],
  "properties": {
    "service": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "entity": {"type": "string"},
        "description": {"type": "string"}
      }
    },
    "database": {
      "type": "object",
      "required": ["table"],
      "properties": {
        "table": {"type": "string", "minLength": 1}
      }
    },
    "fields": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "type", "javaType"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "javaType": {"type": "string", "minLength": 1},
          "nullable": {"type": "boolean"},
          "default_value": {"type": "string"},
          "primaryKey": {"type": "boolean"},
          "autoGenerated": {"type": "boolean"},
          "updateOnModify": {"type": "boolean"},
          "description": {"type": "string"},
          "validation": {
            "type": "object",
            "properties": {
              "required": {"type": "boolean"},
              "maxLength": {"type": "integer", "minimum": 1},
              "min": {"type": "number"}
            },
            "additionalProperties": false
          }
        },
        "additionalProperties": false
      }
    }
  }
}`
