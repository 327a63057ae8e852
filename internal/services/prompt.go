package services

import (
	"fmt"
	"strings"
)

// PromptKind identifies which prompt template a request maps to.
type PromptKind int

const (
	PromptCodeAndQuestion PromptKind = iota
	PromptCodeOnly
	PromptQuestionOnly
)

// KindOf picks the template for a request with the given fields.
func KindOf(code, question string) PromptKind {
	hasCode := strings.TrimSpace(code) != ""
	hasQuestion := strings.TrimSpace(question) != ""
	switch {
	case hasCode && hasQuestion:
		return PromptCodeAndQuestion
	case hasCode:
		return PromptCodeOnly
	default:
		return PromptQuestionOnly
	}
}

// BuildPrompt renders the model prompt for code and question. language may
// be empty.
func BuildPrompt(code, question, language string) string {
	switch KindOf(code, question) {
	case PromptCodeAndQuestion:
		return codeQuestionPrompt(code, question, language)
	case PromptCodeOnly:
		return codeReviewPrompt(code, language)
	default:
		return questionPrompt(question)
	}
}

func codeQuestionPrompt(code, question, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Code question\n\nHere is some %s:\n\n", describe(language, "code"))
	writeFence(&b, code, language)
	fmt.Fprintf(&b, "\nQuestion: %s\n\n", question)
	b.WriteString("Answer the question about this code. Organise the reply under these headings:\n\n")
	b.WriteString("## Summary\nWhat the code does, in a few lines.\n\n")
	fmt.Fprintf(&b, "## Answer\nA direct and detailed answer to: %q\n\n", question)
	b.WriteString("## Improvements\nConcrete changes to the implementation and any better alternatives.\n\n")
	b.WriteString("## Issues\nBugs, edge cases and other problems you can see.\n\n")
	fmt.Fprintf(&b, "## Performance and practice\nOptimisation opportunities and current %s conventions.\n\n",
		describe(language, "programming"))
	b.WriteString("Be specific and actionable. Include code samples where they help.")
	return b.String()
}

func codeReviewPrompt(code, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Code review\n\nReview the following %s:\n\n", describe(language, "code"))
	writeFence(&b, code, language)
	b.WriteString("\nCover each of these headings:\n\n")
	b.WriteString("## Overview\nWhat the code does and what it is for.\n\n")
	b.WriteString("## Quality\nA rating from 1 to 10 with notes on readability and maintainability.\n\n")
	b.WriteString("## Bugs\nLogic errors, edge cases and type problems.\n\n")
	b.WriteString("## Performance\nCurrent characteristics, complexity and optimisation opportunities.\n\n")
	b.WriteString("## Security\nVulnerabilities and input validation gaps.\n\n")
	fmt.Fprintf(&b, "## Suggestions\nSpecific rewrites with examples and %s features worth using.\n\n",
		describe(language, "modern language"))
	fmt.Fprintf(&b, "## Conventions\n%s style, code organisation and documentation.\n\n",
		describe(language, "General"))
	b.WriteString("Focus on actionable findings and include code samples where they help.")
	return b.String()
}

func questionPrompt(question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Programming question\n\nQuestion: %s\n\n", question)
	b.WriteString("Give a well structured answer under these headings:\n\n")
	b.WriteString("## Answer\nA clear, direct response.\n\n")
	b.WriteString("## Insights\nRelated concepts, trade-offs and recommendations.\n\n")
	b.WriteString("## Examples\nCode or practical demonstrations where relevant.\n\n")
	b.WriteString("## Related topics\nConnected ideas worth reading about next.\n\n")
	b.WriteString("Aim to teach as well as answer.")
	return b.String()
}

func writeFence(b *strings.Builder, code, language string) {
	fmt.Fprintf(b, "```%s\n%s\n```\n", strings.ToLower(strings.TrimSpace(language)), code)
}

func describe(language, fallback string) string {
	if language = strings.TrimSpace(language); language != "" {
		return language
	}
	return fallback
}
