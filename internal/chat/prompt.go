package chat

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// baseInstruction is the mode-independent system instruction sent with
// every request.
const baseInstruction = `You are "PolyGlot", a world-class linguistic AI assistant.
Your capabilities:
1. Real-Time Code-Switching: Seamlessly understand and generate mixed-language text (e.g., Hindi+English+Tamil).
2. Dialect Detection: Identify regional variations (e.g., Indian English vs. British English).
3. Emotion Detection: Always analyze the emotional undertone.
`

// culturalInstruction is appended in Cultural mode.
const culturalInstruction = `
MODE: CULTURAL CONTEXT ENGINE
- Tailor responses to cultural norms, customs, and politeness levels.
- Provide a "cultural_insight" explaining how the message might be interpreted or specific cultural references (festivals, idioms).
- If a user is being rude or culturally insensitive, politely educate them in the insight.
`

// harmonyInstructionFormat is appended in Harmony mode, parameterized by the
// two configured languages, the authoring party, and the target party whose
// language the reply must be composed in.
const harmonyInstructionFormat = `
MODE: HARMONY (CROSS-LANGUAGE MEDIATION)
CONTEXT:
- User A speaks: %s
- User B speaks: %s
- CURRENT INPUT IS FROM: %s

TASK:
1. Analyze the input from %[3]s.
2. Mediate and Translate the message for %[4]s into %[5]s.
3. The 'reply' field MUST be in %[5]s (using its native script).
4. Provide the 'transliteration' field containing the English/Romanized phonetic spelling of the 'reply' so it can be read by anyone.
5. Maintain the intent but soften aggression or clarify misunderstandings.
6. In 'cultural_insight', explain any mediation choices or cultural bridges you built.
`

// defaultLanguage backstops an unset mediation language label.
const defaultLanguage = "English"

// ComposeInstruction builds the system instruction for one turn. It is a
// pure projection of its arguments: session state and logs are never
// touched. cfg and speaker only matter in Harmony mode, where the reply is
// directed at the party who did NOT author the current message.
func ComposeInstruction(mode Mode, cfg *MediationConfig, speaker Sender) string {
	switch mode {
	case ModeCultural:
		return baseInstruction + culturalInstruction

	case ModeHarmony:
		langA, langB := defaultLanguage, defaultLanguage
		if cfg != nil {
			if cfg.PartyALanguage != "" {
				langA = cfg.PartyALanguage
			}
			if cfg.PartyBLanguage != "" {
				langB = cfg.PartyBLanguage
			}
		}

		speakerName, targetName, targetLang := "User A", "User B", langB
		if speaker == SenderPartner {
			speakerName, targetName, targetLang = "User B", "User A", langA
		}

		return baseInstruction +
			fmt.Sprintf(harmonyInstructionFormat, langA, langB, speakerName, targetName, targetLang)

	default:
		return baseInstruction
	}
}

// ResponseContract declares the structured-output shape the generation
// service must honor, so replies come back as machine-parseable JSON rather
// than free text. reply, detected_emotion, and detected_language are
// required; the rest are optional (cultural_insight explicitly nullable).
func ResponseContract() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"reply": {
				Type:        "string",
				Description: "The main response text from the AI. In Harmony mode, this is the mediated message for the TARGET user.",
			},
			"detected_emotion": {
				Type:        "string",
				Description: "One or two words describing the emotion (e.g., 'Joyful', 'Frustrated', 'Confused', 'Empathetic').",
			},
			"cultural_insight": {
				Types:       []string{"string", "null"},
				Description: "In Cultural Mode: A brief explanation of cultural nuance. In Harmony Mode: A brief note on why you mediated it this way. Otherwise: null.",
			},
			"detected_language": {
				Type:        "string",
				Description: "The language(s) detected in the input (e.g., 'Hinglish', 'Tamil').",
			},
			"harmony_translation": {
				Type:        "string",
				Description: "Optional: The raw literal translation if the mediated reply differs significantly.",
			},
			"transliteration": {
				Type:        "string",
				Description: "Optional: The English/Romanized phonetic spelling of the 'reply' text. Required if the reply is in a non-Latin script (e.g., Hindi, Arabic, Japanese).",
			},
		},
		Required: []string{"reply", "detected_emotion", "detected_language"},
	}
}
