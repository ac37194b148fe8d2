package fieldops

// requestSchema is the JSON Schema every operations request must satisfy
// before structural validation. Variant-specific requirements (which
// attributes each action needs) are enforced by NewOperation, not here.
const requestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["operation_type", "target_service", "field_operations"],
  "properties": {
    "operation_type": {"type": "string"},
    "target_service": {
      "type": "object",
      "required": ["name", "table"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "table": {"type": "string", "minLength": 1},
        "entity": {"type": "string"},
        "description": {"type": "string"}
      }
    },
    "field_operations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["action"],
        "properties": {
          "action": {"type": "string"},
          "field": {
            "type": "object",
            "properties": {
              "name": {"type": "string"},
              "type": {"type": "string"},
              "javaType": {"type": "string"},
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
                  "maxLength": {"type": "integer"},
                  "min": {"type": "number"}
                }
              }
            }
          },
          "field_name": {"type": "string"},
          "changes": {"type": "object"}
        }
      }
    },
    "options": {
      "type": "object",
      "properties": {
        "dry_run": {"type": "boolean"},
        "auto_confirm": {"type": "boolean"}
      }
    }
  }
}`
