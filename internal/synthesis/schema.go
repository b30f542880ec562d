package synthesis

import "strings"

// SchemaOptions selects which optional sections appear in the JSON shape a
// prompt asks the model to produce. The zero value describes the minimal
// extraction shape (summary plus actions).
type SchemaOptions struct {
	// IncludeNarrative adds the full formatted note body field.
	IncludeNarrative bool
	// IncludeFormatSignals adds the format detection and recipe fields.
	IncludeFormatSignals bool
	// IncludeEntities adds related_entities and open_loops.
	IncludeEntities bool
	// IncludeDecision adds the append/resynthesize decision header used by
	// smart updates.
	IncludeDecision bool
}

// BuildSchema renders the JSON output contract embedded in system prompts.
// The shape is described as annotated pseudo-JSON rather than a formal JSON
// Schema document: models follow the inline annotations more reliably, and
// the parser tolerates the difference anyway.
func BuildSchema(folders []string, opts SchemaOptions) string {
	var b strings.Builder
	b.WriteString("{\n")

	if opts.IncludeDecision {
		b.WriteString(`  "decision": {
    "update_type": "append or resynthesize",
    "confidence": 0.0-1.0,
    "reason": "Brief explanation"
  },
`)
	}

	if opts.IncludeFormatSignals {
		b.WriteString(`  "format_signals": {
    "has_discrete_items": true|false,
    "has_sequential_steps": true|false,
    "has_action_items": true|false,
    "is_reflective": true|false,
    "topic_count": integer,
    "tone": "casual|professional|urgent|reflective|excited|frustrated"
  },
  "format_recipe": "e.g. prose_paragraph + checklist",
`)
	}

	if opts.IncludeNarrative {
		b.WriteString(`  "narrative": "The complete formatted note content - preserve user voice",
`)
	}

	b.WriteString(`  "title": "Brief descriptive title for this note (5-10 words max)",
  "folder": "Choose exactly one from: `)
	b.WriteString(strings.Join(folders, ", "))
	b.WriteString(`",
  "tags": ["relevant", "tags", "max5"],
  "summary": "2-4 sentence card preview - match user tone",
`)

	if opts.IncludeEntities {
		b.WriteString(`  "related_entities": {
    "people": ["names mentioned"],
    "projects": ["project names"],
    "companies": ["company names"],
    "concepts": ["key concepts"]
  },
  "open_loops": [
    {
      "item": "Description of unresolved item",
      "status": "unresolved|question|blocked|deferred",
      "context": "Why this is unresolved"
    }
  ],
`)
	}

	b.WriteString(`  "calendar": [
    {
      "title": "Event name",
      "date": "YYYY-MM-DD",
      "time": "HH:MM (24hr, optional)",
      "location": "optional location",
      "attendees": ["optional", "attendees"]
    }
  ],
  "email": [
    {
      "to": "email@example.com or descriptive name",
      "subject": "Email subject line",
      "body": "Draft email body content - be professional and complete"
    }
  ],
  "reminders": [
    {
      "title": "Clear, actionable reminder text WITH CONTEXT",
      "due_date": "YYYY-MM-DD",
      "due_time": "HH:MM (optional)",
      "priority": "low|medium|high",
      "intent_source": "COMMITMENT_TO_SELF|COMMITMENT_TO_OTHER|TIME_BINDING|DELEGATION"
    }
  ]
}`)
	return b.String()
}

// BuildContextBlock formats the per-user timezone, date, and folder context
// appended to system prompts. A nil context yields an empty string so callers
// can concatenate unconditionally.
func BuildContextBlock(uc *UserContext, folders []string) string {
	if uc == nil {
		return ""
	}
	tz := uc.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	date := uc.CurrentDate
	if date == "" {
		date = defaultCurrentDate
	}
	return "\nUser context:\n" +
		"- Timezone: " + tz + "\n" +
		"- Current date: " + date + "\n" +
		"- Your folders: " + strings.Join(folders, ", ") + "\n"
}
