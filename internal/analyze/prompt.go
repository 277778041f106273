package analyze

const systemPrompt = `Extract business information from website content.
Focus on:
1. Owner/founder name (if mentioned with high confidence)
2. Contact methods and preferences
3. Key business facts

Return JSON with:
{
    "owner_name": "Full Name or null",
    "owner_title": "Position/Title or null",
    "confidence": "high/medium/low",
    "confidence_reasoning": "Brief explanation",
    "key_facts": ["fact1", "fact2"],
    "contact_methods": {
        "primary": "main contact method",
        "email_pattern": "typical email format if found"
    }
}`

const userPrefix = "Website content to analyze:\n\n"

const (
	contentLimit = 3000
	maxTokens    = 400
)
