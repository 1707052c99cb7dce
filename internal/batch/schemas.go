package batch

import "gtdlens/internal/types"

// =============================================================================
// RESPONSE SCHEMAS
// =============================================================================
// One fixed JSON Schema per analysis level. Providers that support schema
// enforcement receive these verbatim; for the rest the schema rides along in
// the prompt and the merge layer validates the parsed shape.

// FolderResponseSchema describes the expected reply to a folder-level batch:
// per-folder assessments plus hierarchy-wide fields.
const FolderResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["folders"],
  "additionalProperties": false,
  "properties": {
    "folders": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "suggestedType", "confidence"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "description": "Folder name exactly as given"},
          "health": {"type": "string", "description": "One-line health assessment"},
          "suggestedType": {
            "type": "string",
            "enum": ["archive", "someday", "reference", "area", "general"]
          },
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "reasoning": {"type": "string"}
        }
      }
    },
    "tags": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "category"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string"},
          "category": {
            "type": "string",
            "enum": ["contexts", "people", "status", "energy", "time", "areas", "uncategorized"]
          },
          "meaning": {"type": "string"}
        }
      },
      "description": "Optional category suggestions for known tags"
    },
    "organizationalStyle": {
      "type": "string",
      "description": "Short description of the overall organizational style"
    },
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["area", "severity", "finding", "suggestion"],
        "additionalProperties": false,
        "properties": {
          "area": {"type": "string"},
          "severity": {"type": "string", "enum": ["high", "medium", "low"]},
          "finding": {"type": "string"},
          "suggestion": {"type": "string"}
        }
      }
    }
  }
}`

// ProjectResponseSchema describes the expected reply to a project-level
// batch: a flow assessment plus blocked/bottleneck and priority lists.
const ProjectResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["flowAssessment"],
  "additionalProperties": false,
  "properties": {
    "flowAssessment": {"type": "string"},
    "blockedProjects": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Names of projects that look blocked or are bottlenecks"
    },
    "priorities": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Project names in suggested order of attention"
    },
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["area", "severity", "finding", "suggestion"],
        "additionalProperties": false,
        "properties": {
          "area": {"type": "string"},
          "severity": {"type": "string", "enum": ["high", "medium", "low"]},
          "finding": {"type": "string"},
          "suggestion": {"type": "string"}
        }
      }
    }
  }
}`

// TaskResponseSchema describes the expected reply to a task-level batch.
const TaskResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["workloadAssessment"],
  "additionalProperties": false,
  "properties": {
    "workloadAssessment": {"type": "string"},
    "qualityIssues": {
      "type": "array",
      "items": {"type": "string"}
    },
    "nextActions": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Concrete suggested next actions"
    },
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["area", "severity", "finding", "suggestion"],
        "additionalProperties": false,
        "properties": {
          "area": {"type": "string"},
          "severity": {"type": "string", "enum": ["high", "medium", "low"]},
          "finding": {"type": "string"},
          "suggestion": {"type": "string"}
        }
      }
    }
  }
}`

// SchemaFor returns the response schema for a batch level.
func SchemaFor(level types.BatchLevel) string {
	switch level {
	case types.LevelFolder:
		return FolderResponseSchema
	case types.LevelProject:
		return ProjectResponseSchema
	case types.LevelTask:
		return TaskResponseSchema
	}
	return ""
}
