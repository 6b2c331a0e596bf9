package trends

// Category describes one entry of the cultural taxonomy: the vocabulary and
// channel names that pull content toward it.
type Category struct {
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Channels    []string `json:"channels"`
	Description string   `json:"description"`
}

// DefaultTaxonomy is the fixed 10-category cultural taxonomy. Declaration
// order matters: score ties resolve to the earlier entry, and the last
// entry doubles as the default for content nothing matches.
func DefaultTaxonomy() []Category {
	return []Category{
		{
			Name:        "Gen Z Internet Culture",
			Keywords:    []string{"corecore", "aesthetic", "vibe", "energy", "liminal", "backrooms", "tiktok", "viral dance", "challenge"},
			Channels:    []string{"tiktok", "viral", "meme", "aesthetic"},
			Description: "Internet-native cultural phenomena",
		},
		{
			Name:        "Urban Style & Nightlife",
			Keywords:    []string{"chrome pants", "streetwear", "nightlife", "club", "underground", "street style", "fashion week"},
			Channels:    []string{"no jumper", "complex", "hypebeast", "streetwear"},
			Description: "Urban fashion and nightlife trends",
		},
		{
			Name:        "Wellness & Mindfulness",
			Keywords:    []string{"mindfulness", "meditation", "wellness", "self care", "mental health", "yoga", "breathwork"},
			Channels:    []string{"wellness", "mindful", "meditation", "health"},
			Description: "Health and wellness movements",
		},
		{
			Name:        "Tech Innovation",
			Keywords:    []string{"ai", "blockchain", "crypto", "web3", "machine learning", "chatgpt", "automation"},
			Channels:    []string{"tech", "ai", "startup", "silicon valley"},
			Description: "Technology and innovation trends",
		},
		{
			Name:        "Financial Markets",
			Keywords:    []string{"stocks", "trading", "investment", "market", "economy", "finance", "money"},
			Channels:    []string{"finance", "trading", "market", "investment"},
			Description: "Financial and market trends",
		},
		{
			Name:        "Entertainment & Media",
			Keywords:    []string{"movie", "tv show", "celebrity", "entertainment", "music", "album", "concert"},
			Channels:    []string{"entertainment", "celebrity", "music", "film"},
			Description: "Entertainment industry trends",
		},
		{
			Name:        "Gaming Culture",
			Keywords:    []string{"gaming", "esports", "streamer", "twitch", "game", "console", "pc gaming"},
			Channels:    []string{"gaming", "esports", "twitch", "gamedev"},
			Description: "Gaming and esports trends",
		},
		{
			Name:        "Food & Lifestyle",
			Keywords:    []string{"food", "recipe", "cooking", "restaurant", "diet", "nutrition", "lifestyle"},
			Channels:    []string{"food", "cooking", "chef", "lifestyle"},
			Description: "Food and lifestyle trends",
		},
		{
			Name:        "Political & Social",
			Keywords:    []string{"politics", "election", "social justice", "activism", "policy", "government"},
			Channels:    []string{"news", "politics", "activist", "social"},
			Description: "Political and social movements",
		},
		{
			Name:        "Emerging Subcultures",
			Keywords:    []string{"underground", "niche", "alternative", "indie", "experimental", "avant garde"},
			Channels:    []string{"underground", "alternative", "indie", "experimental"},
			Description: "Emerging and niche cultural movements",
		},
	}
}
