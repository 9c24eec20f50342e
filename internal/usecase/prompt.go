package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pawradise/backend/internal/domain"
)

// DefaultTemperature is the sampling temperature for assistant turns
const DefaultTemperature = 0.7

const imagePromptDescription = "A descriptive prompt for an image generator. MANDATORY if the user asks to see/show/generate images."

const assistantPersona = `You are "Paw", the intelligent shopping assistant for Pawradise Pet Shop.
Your goal is to help customers find the perfect products for their pets from our catalog.
Be friendly, punny (use pet puns occasionally), and helpful.`

const assistantRules = `When a user asks for a recommendation, analyze their needs and match them to our products.
If you recommend products, you MUST include their IDs in the "recommendedProductIds" field of the JSON response.

*** HYBRID RESPONSE RULES (IMPORTANT) ***
If the user asks for "related images", "pictures", "photos", or "art" of specific animals (e.g. "related images of dogs and cats", "cute images of puppies", "draw a cat"):
1. PRODUCT SEARCH: You MUST search the catalog for products matching those animals and populate "recommendedProductIds" (e.g. Dog items for dogs).
2. IMAGE GENERATION: You MUST populate "imageGenerationPrompt" to create a visual representation of the animals.

Do not choose one or the other. Do BOTH.

Triggers for Image Generation:
- "images", "pictures", "photos", "drawings", "art"
- "show me", "visualize", "generate", "draw", "paint", "create"
- "I need of [animal]"
- "give me [animal]" (if visual context is implied)

Image Prompt Rules:
- If the user asks for "images" (plural) or multiple subjects (e.g. "dog, cats"), generate a SINGLE prompt that best represents the request (e.g. "A group photo of a dog and a cat").
- The prompt should be descriptive and high quality.

Example:
User: "related images i need of dog, cats"
Response:
{
  "text": "Here are some purr-fect products for dogs and cats, plus a cute picture I painted for you! 🐶🐱",
  "recommendedProductIds": ["1", "4", "2", "7"],
  "imageGenerationPrompt": "A high quality photo of a golden retriever dog and a tabby cat sitting together on a rug, soft lighting"
}

If the user's query is general conversation, just chat nicely but try to steer them toward our products.

You must respond in JSON format with the following schema:
{
  "text": "Your conversational response here (markdown supported)",
  "recommendedProductIds": ["id1", "id2"],
  "imageGenerationPrompt": "` + imagePromptDescription + `"
}`

// BuildSystemInstruction renders the assistant instruction with one line per catalog product
func BuildSystemInstruction(products []domain.Product) string {
	var b strings.Builder
	b.WriteString(assistantPersona)
	b.WriteString("\n\nHere is our current Product Catalog:\n")
	for _, p := range products {
		b.WriteString(catalogLine(p))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(assistantRules)
	return b.String()
}

// catalogLine formats a product the way the model sees it
func catalogLine(p domain.Product) string {
	price := strconv.FormatFloat(p.Price, 'f', -1, 64)
	return fmt.Sprintf("ID: %s, Name: %s, Category: %s, Price: $%s, Description: %s",
		p.ID, p.Name, p.Category, price, p.Description)
}

// ReplyResponseSchema is the structured-output schema for assistant replies
func ReplyResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type": "STRING",
			},
			"recommendedProductIds": map[string]interface{}{
				"type":  "ARRAY",
				"items": map[string]interface{}{"type": "STRING"},
			},
			"imageGenerationPrompt": map[string]interface{}{
				"type":        "STRING",
				"description": imagePromptDescription,
			},
		},
		"required": []string{"text"},
	}
}
