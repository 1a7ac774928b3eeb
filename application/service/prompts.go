package service

import "strings"

// PromptStyle selects the tone of the generated answer.
type PromptStyle string

// Supported prompt styles.
const (
	StyleDefault     PromptStyle = "default"
	StyleDetailed    PromptStyle = "detailed"
	StyleConcise     PromptStyle = "concise"
	StyleTechnical   PromptStyle = "technical"
	StyleEducational PromptStyle = "educational"
)

var systemPrompts = map[PromptStyle]string{
	StyleDefault: `You are a helpful assistant that answers questions based on provided context.
Always base your answer on the context provided. If the context doesn't contain relevant information,
say so clearly. Be concise and accurate.`,

	StyleDetailed: `You are an expert assistant that provides detailed, well-structured answers based on provided context.
Always cite the context when providing information. If the context doesn't contain relevant information,
clearly state that. Provide comprehensive answers with proper formatting.`,

	StyleConcise: `You are a concise assistant that provides brief, direct answers based on provided context.
Keep answers short and to the point. If the context doesn't contain relevant information, say so.
Avoid unnecessary elaboration.`,

	StyleTechnical: `You are a technical expert assistant that answers questions based on provided context.
Provide accurate technical information with proper terminology. If the context doesn't contain relevant information,
clearly state that. Use code examples or technical details when appropriate.`,

	StyleEducational: `You are an educational assistant that explains concepts based on provided context.
Break down complex ideas into understandable parts. If the context doesn't contain relevant information,
clearly state that. Use examples and analogies when helpful.`,
}

var queryTemplates = map[PromptStyle]string{
	StyleDefault: `Context:
{context}

Question: {query}

Please provide a clear and concise answer based on the context above.`,

	StyleDetailed: `Context:
{context}

Question: {query}

Please provide a detailed and comprehensive answer based on the context above.
Include relevant details and examples from the context.`,

	StyleConcise: `Context:
{context}

Question: {query}

Please provide a brief answer in 1-2 sentences based on the context above.`,

	StyleTechnical: `Context:
{context}

Question: {query}

Please provide a technical answer based on the context above.
Include relevant technical details, specifications, or code if applicable.`,

	StyleEducational: `Context:
{context}

Question: {query}

Please explain the answer in an educational manner based on the context above.
Break down complex concepts and provide examples.`,
}

// SystemPrompt returns the system prompt for a style, falling back to the
// default style for unknown values.
func SystemPrompt(style PromptStyle) string {
	if p, ok := systemPrompts[style]; ok {
		return p
	}
	return systemPrompts[StyleDefault]
}

// FormatQueryPrompt fills the query template for a style with the retrieved
// context and the user's question.
func FormatQueryPrompt(style PromptStyle, query, context string) string {
	tmpl, ok := queryTemplates[style]
	if !ok {
		tmpl = queryTemplates[StyleDefault]
	}
	out := strings.ReplaceAll(tmpl, "{context}", context)
	return strings.ReplaceAll(out, "{query}", query)
}
