package testset

const commonThemesPrompt = `
# Task Context
You are analyzing summaries of related text passages to identify the abstract themes they share. The themes are used to synthesize evaluation questions for retrieval systems.

# Background Data
Summaries:
%s

# Detailed Task Description & Rules
- Identify up to %d distinct themes shared across the summaries.
- A theme is a short label (a few words) naming subject matter that spans more than one summary where possible.
- Themes must be grounded in the summaries; do not invent topics that appear nowhere.
- Prefer abstract themes over restating a single summary's topic.

# Output Formatting
Return a JSON object:
{
  "themes": ["<theme>", ...]
}
`

const commonConceptsPrompt = `
# Task Context
You are analyzing keyphrases drawn from a group of related documents to identify higher-level concepts the documents share. The concepts are used to synthesize comparative evaluation questions.

# Background Data
Keyphrases:
%s

# Detailed Task Description & Rules
- Identify up to %d distinct concepts shared across the keyphrases.
- A concept is a short label (a few words) abstracting an idea several keyphrases point at.
- Concepts must be grounded in the keyphrases; do not invent ideas with no support.

# Output Formatting
Return a JSON object:
{
  "concepts": ["<concept>", ...]
}
`

const themeQuestionPrompt = `
# Task Context
You are writing one question for a retrieval evaluation dataset. The question must be about the given theme and answerable from the given context.

# Background Data
Theme: %s

Context:
%s

# Detailed Task Description & Rules
- Write exactly one question about the theme that the context can answer.
- The question must stand alone: no "according to the text" or other references to the context.
- Style: %s. Length: %s.

# Output Formatting
Return a JSON object:
{
  "question": "<the question>"
}
`

const comparativeQuestionPrompt = `
# Task Context
You are writing one comparative question for a retrieval evaluation dataset. The question must compare how the given documents relate to a shared concept and be answerable from their summaries.

# Background Data
Concept: %s

Keyphrases: %s

Summaries:
%s

# Detailed Task Description & Rules
- Write exactly one question that compares or connects the documents through the concept.
- The question must stand alone: no "according to the documents" or other references to the source material.
- Style: %s. Length: %s.

# Output Formatting
Return a JSON object:
{
  "question": "<the question>"
}
`

const criticPrompt = `
# Task Context
You are judging whether a generated question is acceptable for a retrieval evaluation dataset.

# Background Data
Question: %s

# Detailed Task Description & Rules
Score each criterion from 0 to 2:
- independence: can the question be understood on its own, with no hidden reference to an unseen source text? (0 = depends entirely on unstated context, 2 = fully self-contained)
- clear_intent: is it clear what kind of answer the question is asking for? (0 = unclear, 2 = unambiguous)

# Output Formatting
Return a JSON object:
{
  "independence": <0-2>,
  "clear_intent": <0-2>
}
`

const modifyQuestionPrompt = `
# Task Context
You are rewriting a question that failed a quality review for a retrieval evaluation dataset.

# Background Data
Original question: %s

Topic: %s

# Detailed Task Description & Rules
- Rewrite the question so it is self-contained and has a clear intent, while staying on the same topic.
- Style: %s. Length: %s.

# Output Formatting
Return a JSON object:
{
  "question": "<the rewritten question>"
}
`

const answerPrompt = `
# Task Context
You are writing the reference answer for a question in a retrieval evaluation dataset.

# Background Data
Question: %s

Context:
%s

# Detailed Task Description & Rules
- Answer the question using only information present in the context.
- If the context only partially covers the question, answer the covered part and say nothing beyond it.
- Write a complete, standalone answer; do not mention the context.

# Output Formatting
Return a JSON object:
{
  "answer": "<the answer>"
}
`

type themesResponse struct {
	Themes []string `json:"themes" jsonschema_description:"Abstract themes shared across the summaries"`
}

type conceptsResponse struct {
	Concepts []string `json:"concepts" jsonschema_description:"Concepts shared across the keyphrases"`
}

type questionResponse struct {
	Question string `json:"question" jsonschema_description:"The generated question"`
}

type criticResponse struct {
	Independence int `json:"independence" jsonschema_description:"0-2 score for whether the question stands alone"`
	ClearIntent  int `json:"clear_intent" jsonschema_description:"0-2 score for whether the expected answer type is clear"`
}

type answerResponse struct {
	Answer string `json:"answer" jsonschema_description:"The reference answer grounded in the context"`
}
