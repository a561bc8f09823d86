package guidance

import (
	"fmt"
	"strings"
)

type Prompt struct {
	System string
	User   string
}

// citationRules is shared by both modes. reference.LinkFor parses exactly
// these shapes; a change here needs a matching recognizer there.
const citationRules = `For every "source" field, follow these EXACT formatting rules:
   - Quran: "Quran chapter:verse" (e.g., "Quran 2:186")
   - Bukhari: "Sahih al-Bukhari hadith_number" (e.g., "Sahih al-Bukhari 1234")
   - Muslim: "Sahih Muslim hadith_number" (e.g., "Sahih Muslim 2345")
   - Abu Dawood: "Sunan Abu Dawood hadith_number" (e.g., "Sunan Abu Dawood 1234")
   - Tirmidhi: "Jami at-Tirmidhi hadith_number" (e.g., "Jami at-Tirmidhi 3456")
   - Nasa'i: "Sunan an-Nasa'i hadith_number" (e.g., "Sunan an-Nasa'i 1234")
   - Ibn Majah: "Sunan Ibn Majah hadith_number" (e.g., "Sunan Ibn Majah 4321")
   - Muwatta Malik: "Muwatta Malik hadith_number" (e.g., "Muwatta Malik 1720")
   - Riyad as-Salihin: "Riyad as-Salihin hadith_number" (e.g., "Riyad as-Salihin 1468")
   - Always include the hadith number for hadith sources.`

const duaSystemPrompt = "You are a knowledgeable Islamic scholar who provides authentic Islamic du'as " +
	"(supplications) from the Quran and sahih hadith (preferably as listed on Quran.com for Quran and " +
	"Sunnah.com for hadith). You format your responses as clean JSON and ensure the Arabic text is accurate."

const rulingSystemPrompt = "You are a knowledgeable Islamic scholar who summarises rulings on questions of " +
	"Islamic law using the Quran, authentic hadith and the positions of recognised scholars. You cite every " +
	"evidence precisely, state differences of opinion fairly and format your responses as clean JSON."

const duaUserTemplate = `Generate a relevant Islamic du'a (supplication) based on the following situation or need:
"%s"

Important guidelines:
1. Only provide du'as from the Quran or authentic (sahih) hadith collections. If you're unsure about authenticity, choose a well-known du'a with verified sources.

2. Format the response as a JSON object with the following structure:
{
  "title": "Descriptive title for this du'a",
  "narrator": "Name of the narrator (if from hadith)",
  "context": "Brief context about when/how the Prophet (SAW) said this du'a (if applicable)",
  "arabic": "Arabic text of the du'a",
  "transliteration": "English transliteration",
  "translation": "English translation",
  "source": "Source with specific reference format (see below)"
}

3. %s
   - For hadith, always end the source with the authenticity grade in this format: " | Sahih", " | Hasan", " | Da'if", etc.

4. Examples of correctly formatted sources:
   - "Quran 2:186"
   - "Sahih al-Bukhari 6307 | Sahih"
   - "Sunan Abu Dawood 1517 | Hasan"
   - "Jami at-Tirmidhi 3599 | Sahih"

5. Make sure the Arabic text is correct and properly formatted.

6. If no specific du'a exists for this situation, provide a general du'a from the Quran or authentic hadith that would be appropriate, and clearly indicate this in the context field.

7. Double-check the hadith number and reference before providing it. Incorrect references will mislead users.`

const rulingUserTemplate = `Answer the following question about Islamic rulings:
"%s"

Important guidelines:
1. Base the answer on the Quran, authentic hadith and the recognised schools of jurisprudence. If scholars differ, say so.

2. Format the response as a JSON object with the following structure:
{
  "title": "Short title describing the question",
  "summary": "Concise summary of the ruling",
  "evidences": [
    {
      "arabic": "Arabic text of the evidence (if applicable)",
      "translation": "English translation of the evidence",
      "source": "Source with specific reference format (see below)",
      "grade": "Authenticity grade for hadith (Sahih, Hasan, Da'if, ...), empty for Quran"
    }
  ],
  "scholarOpinions": [
    { "scholar": "Scholar or school name", "opinion": "Their position" }
  ],
  "notes": "Additional notes or caveats",
  "references": ["Further reading"]
}

3. %s
   - Put the authenticity grade in the "grade" field, not in "source".

4. Examples of correctly formatted sources:
   - "Quran 4:103"
   - "Sahih Muslim 2699"
   - "Sunan Ibn Majah 224"

5. The "summary" field is required. Never invent hadith numbers; if unsure, cite the Quran or omit the evidence.`

// BuildPrompt returns the system/user prompt pair for query in mode.
func BuildPrompt(query string, mode Mode) (Prompt, error) {
	q := sanitizeQuery(query)
	switch mode {
	case ModeDua:
		return Prompt{System: duaSystemPrompt, User: fmt.Sprintf(duaUserTemplate, q, citationRules)}, nil
	case ModeRuling:
		return Prompt{System: rulingSystemPrompt, User: fmt.Sprintf(rulingUserTemplate, q, citationRules)}, nil
	}
	return Prompt{}, fmt.Errorf("build prompt: unknown mode %q", mode)
}

// sanitizeQuery keeps the user text from closing the quoted block it is embedded in.
func sanitizeQuery(query string) string {
	q := strings.TrimSpace(query)
	q = strings.ReplaceAll(q, `"`, "'")
	return strings.Join(strings.Fields(q), " ")
}
