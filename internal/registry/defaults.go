package registry

import "github.com/hamed0406/uptimeboard/internal/domain"

var defaultTargets = []domain.Target{
	{Key: domain.SelfKey, Name: "Self Uptime Monitor", Category: "self"},
	{Key: "github-pages", URL: "https://github.com", Name: "GitHub Pages", Category: "github"},
	{Key: "github-status", URL: "https://www.githubstatus.com", Name: "GitHub Status", Category: "github"},
	{Key: "cloudflare", URL: "https://www.cloudflare.com", Name: "Cloudflare", Category: "network"},
	{Key: "aws", URL: "https://status.aws.amazon.com", Name: "AWS", Category: "cloud"},
	{Key: "discord", URL: "https://discord.com", Name: "Discord", Category: "social"},
	{Key: "google", URL: "https://www.google.com", Name: "Google", Category: "other"},
	{Key: "microsoft", URL: "https://www.microsoft.com", Name: "Microsoft", Category: "other"},
	{Key: "azure", URL: "https://status.azure.com", Name: "Azure", Category: "cloud"},
	{Key: "hackclub", URL: "https://hackclub.com", Name: "Hack Club", Category: "community"},
	{Key: "slack", URL: "https://slack.com", Name: "Slack", Category: "social"},
	{Key: "steam", URL: "https://store.steampowered.com", Name: "Steam", Category: "gaming"},
	{Key: "epic-games", URL: "https://epicgames.com", Name: "Epic Games", Category: "gaming"},
	{Key: "fortnite", URL: "https://fortnite.com", Name: "Fortnite", Category: "gaming"},
	{Key: "minecraft", URL: "https://www.minecraft.net", Name: "Minecraft", Category: "gaming"},
	{Key: "twitch", URL: "https://www.twitch.tv", Name: "Twitch", Category: "video"},
	{Key: "youtube", URL: "https://www.youtube.com", Name: "YouTube", Category: "video"},
	{Key: "flavortown", URL: "https://flavortown.hackclub.com", Name: "Flavortown", Category: "community"},
	{Key: "scraps", URL: "https://scraps.hackclub.com", Name: "Scraps", Category: "community"},
	{Key: "blueprint", URL: "https://blueprint.hackclub.com", Name: "Blueprint", Category: "community"},
	{Key: "gmail", URL: "https://mail.google.com", Name: "Gmail", Category: "other"},
	{Key: "hcb", URL: "https://hcb.hackclub.com", Name: "HCB", Category: "community"},
	{Key: "whatsapp", URL: "https://www.whatsapp.com", Name: "WhatsApp", Category: "social"},
	{Key: "reddit", URL: "https://www.reddit.com", Name: "Reddit", Category: "social"},
	{Key: "spotify", URL: "https://www.spotify.com", Name: "Spotify", Category: "other"},
	{Key: "playstation-network", URL: "https://www.playstation.com", Name: "PlayStation Network", Category: "gaming"},
	{Key: "xbox", URL: "https://www.xbox.com", Name: "Xbox", Category: "gaming"},
	{Key: "nasa", URL: "https://www.nasa.gov", Name: "NASA", Category: "useless"},
	{Key: "oracle", URL: "https://www.oracle.com", Name: "Oracle", Category: "cloud"},
	{Key: "example", URL: "https://www.example.com", Name: "Example", Category: "useless"},
	{Key: "google-play", URL: "https://play.google.com", Name: "Google Play", Category: "other"},
	{Key: "chrome-web-store", URL: "https://chromewebstore.google.com", Name: "Chrome Web Store", Category: "other"},
	{Key: "mozilla", URL: "https://www.mozilla.org", Name: "Mozilla", Category: "other"},
	{Key: "firefox-addons", URL: "https://addons.mozilla.org", Name: "Firefox Add-ons", Category: "other"},
	{Key: "openai", URL: "https://openai.com", Name: "OpenAI", Category: "ai"},
	{Key: "anthropic", URL: "https://claude.ai", Name: "Claude", Category: "ai"},
	{Key: "google-gemini", URL: "https://gemini.google.com", Name: "Google Gemini", Category: "ai"},
	{Key: "github-copilot", URL: "https://github.com/features/copilot", Name: "GitHub Copilot", Category: "ai"},
	{Key: "microsoft-copilot", URL: "https://copilot.microsoft.com", Name: "Microsoft Copilot", Category: "ai"},
	{Key: "midjourney", URL: "https://www.midjourney.com", Name: "Midjourney", Category: "ai"},
	{Key: "perplexity", URL: "https://www.perplexity.ai", Name: "Perplexity", Category: "ai"},
	{Key: "huggingface", URL: "https://huggingface.co", Name: "Hugging Face", Category: "ai"},
}
