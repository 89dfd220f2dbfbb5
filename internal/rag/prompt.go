package rag

import "strings"

const stuffPromptTemplate = "Use the following pieces of context to answer the question at the end. " +
	"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n" +
	"{context}\n\nQuestion: {question}\nHelpful Answer:"

// BuildPrompt places every context chunk, separated by blank lines, ahead of the question.
func BuildPrompt(chunks []ScoredChunk, question string) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	r := strings.NewReplacer("{context}", strings.Join(texts, "\n\n"), "{question}", question)
	return r.Replace(stuffPromptTemplate)
}
