package rag

import (
	"fmt"
	"strings"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/repositories"
)

// NoContextAnswer is returned when retrieval finds nothing for the caller's
// accessible courses. It is a successful response, not an error, and the
// language model is never invoked for it.
const NoContextAnswer = "I could not find any relevant course content for your question. " +
	"Try rephrasing it, or check that the topic is covered in one of your courses."

// BuildSystemPrompt returns the instruction constraining the model to the
// supplied transcript excerpts
func BuildSystemPrompt() string {
	return `You are a helpful teaching assistant for a video course platform. Answer ONLY using the provided transcript excerpts. Always:
- Cite the relevant timestamp ranges and section names.
- If code was mentioned, reproduce it as Markdown fenced code.
- Be concise and accurate. If unsure, say you don't have enough context.`
}

// BuildContextBlocks formats retrieval hits into numbered citation blocks,
// preserving the store's descending-score order
func BuildContextBlocks(hits []repositories.RetrievalHit) string {
	blocks := make([]string, len(hits))
	for i, h := range hits {
		blocks[i] = fmt.Sprintf("[#%d] [Course: %s] [Section: %s] [File: %s] [Time: %s → %s]\n%s",
			i+1,
			h.Metadata.CourseID,
			h.Metadata.Section,
			h.Metadata.FileName,
			h.Metadata.StartTime,
			h.Metadata.EndTime,
			h.Text,
		)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildUserPrompt assembles the grounded question prompt. priorQuestions are
// the caller's most recent earlier questions, oldest first, included as soft
// context only.
func BuildUserPrompt(question, contextBlocks string, priorQuestions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Student question: %q\n\nRelevant course context:\n\n%s\n\n", question, contextBlocks)

	if len(priorQuestions) > 0 {
		b.WriteString("Earlier questions from this student (for context only):\n")
		for _, q := range priorQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\n")
	}

	b.WriteString("Answer the student using only the above context. Include the best timestamps and section names.")
	return b.String()
}
