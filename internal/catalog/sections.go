package catalog

import "sync"

// Default returns the index over the built-in guide catalog. It is built on
// first use and shared for the life of the process.
var Default = sync.OnceValue(func() *Index {
	return Build(BuiltinSections())
})

// BuiltinSections returns a fresh copy of the curated guide catalog.
func BuiltinSections() []Section {
	return []Section{
		{
			ID:    "dev-tools",
			Title: "Development tools",
			Tools: []Tool{
				{
					ID:          "cursor",
					Name:        "Cursor",
					URL:         "https://cursor.com",
					Tagline:     "AI-first code editor",
					Description: "Built to make you extraordinarily productive, Cursor is the best way to code with AI.",
					Bullets:     []string{"Pair programming", "Inline edits", "Agent mode"},
				},
				{
					ID:          "codex",
					Name:        "Codex",
					URL:         "https://chatgpt.com",
					Tagline:     "AI coding agent for web and desktop",
					Description: "Codex helps you plan, edit, and ship code faster. Use the web app for quick guidance and the desktop app for deep repo work with local files and terminal commands.",
					Bullets: []string{
						"Web app for quick coding help",
						"Desktop app for repo-level execution",
						"Planning, implementation, and review",
					},
				},
				{
					ID:          "replit",
					Name:        "Replit",
					URL:         "https://replit.com",
					Tagline:     "Browser-based IDE",
					Description: "Run full-stack apps in the cloud with zero setup. Collaborate in real-time.",
					Bullets:     []string{"Cloud development", "Real-time collaboration", "Deploy instantly"},
				},
				{
					ID:          "claude-code",
					Name:        "Claude Code",
					URL:         "https://claude.ai",
					Tagline:     "Anthropic's coding assistant",
					Description: "Advanced coding capabilities for generation, explanation, and refactoring.",
					Bullets:     []string{"Code generation", "Deep explanation", "Refactoring support"},
				},
				{
					ID:          "lovable",
					Name:        "Lovable",
					URL:         "https://lovable.dev",
					Tagline:     "AI-powered app builder",
					Description: "Turn prompts into full-stack web apps. Formerly GPT Engineer.",
					Bullets:     []string{"Design to code", "Prompt-based building", "Full-stack generation"},
				},
			},
		},
		{
			ID:    "databases",
			Title: "Databases",
			Tools: []Tool{
				{
					ID:          "supabase",
					Name:        "Supabase",
					URL:         "https://supabase.com",
					Tagline:     "Open source Firebase alternative",
					Description: "The open source Firebase alternative. Start your project with a Postgres database, Authentication, instant APIs, Edge Functions, Realtime subscriptions, and Storage.",
					Bullets:     []string{"Postgres database", "Authentication", "Realtime subscriptions"},
				},
			},
		},
		{
			ID:    "auth",
			Title: "Auth",
			Tools: []Tool{
				{
					ID:          "clerk",
					Name:        "Clerk",
					URL:         "https://clerk.com",
					Tagline:     "User management for modern apps",
					Description: "Drop-in components and APIs for authentication, user management, and session handling. Built for React and Next.js with a generous free tier.",
					Bullets:     []string{"Pre-built components", "Next.js & React", "Free tier"},
				},
				{
					ID:          "auth0",
					Name:        "Auth0",
					URL:         "https://auth0.com",
					Tagline:     "Identity platform",
					Description: "Secure access for everyone. Add authentication and authorization to your apps with social logins, SSO, and MFA.",
					Bullets:     []string{"Social & enterprise login", "SSO & MFA", "Universal Login"},
				},
				{
					ID:          "nextauth",
					Name:        "NextAuth",
					URL:         "https://next-auth.js.org",
					Tagline:     "Auth for Next.js",
					Description: "Authentication for Next.js and Serverless. Supports OAuth, email, credentials, and custom providers with a simple API.",
					Bullets:     []string{"OAuth & credentials", "Next.js native", "Open source"},
				},
			},
		},
		{
			ID:    "deployment",
			Title: "Deployment",
			Tools: []Tool{
				{
					ID:          "netlify",
					Name:        "Netlify",
					URL:         "https://netlify.com",
					Tagline:     "Static sites + serverless",
					Description: "The fastest way to build the fastest sites. Git-based deploy, previews, and edge functions.",
					Bullets:     []string{"Git-based deployment", "Deploy previews", "Edge functions"},
				},
				{
					ID:          "vercel",
					Name:        "Vercel",
					URL:         "https://vercel.com",
					Tagline:     "Frontend/Next.js deployment",
					Description: "Develop. Preview. Ship. The platform for frontend developers, providing the speed and reliability innovators need to create at the moment of inspiration.",
					Bullets:     []string{"Next.js optimization", "Serverless functions", "Global edge network"},
				},
				{
					ID:          "railway",
					Name:        "Railway",
					URL:         "https://railway.app",
					Tagline:     "Simple app hosting",
					Description: "Railway is an infrastructure platform where you can provision infrastructure, develop with that infrastructure locally, and then deploy to the cloud.",
					Bullets:     []string{"Zero config", "Cron jobs", "Database provisioning"},
				},
			},
		},
		{
			ID:    "terminal",
			Title: "Terminal",
			Tools: []Tool{
				{
					ID:          "warp",
					Name:        "Warp",
					URL:         "https://warp.dev",
					Tagline:     "Modern terminal",
					Description: "Warp is a blazingly fast, Rust-based terminal reimagined from the ground up to work like a modern app.",
					Bullets:     []string{"AI command search", "Block-based output", "Collaborative workflows"},
				},
			},
		},
		{
			ID:    "apis",
			Title: "APIs",
			Tools: []Tool{
				{
					ID:          "openai",
					Name:        "OpenAI API",
					URL:         "https://platform.openai.com",
					Tagline:     "AI models for your app",
					Description: "Access GPT-4 and other models for chat, completions, and embeddings to build AI-powered features.",
					Bullets:     []string{"GPT-4 access", "Embeddings", "Fine-tuning"},
				},
			},
		},
	}
}
