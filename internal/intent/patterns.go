package intent

import "regexp"

// PatternsVersion identifies the revision of the pattern tables below. Bump
// it whenever a table changes so stored outcome events can be compared.
const PatternsVersion = 1

// PatternSet is a named table of case-insensitive, word-anchored patterns.
type PatternSet struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Count returns how many patterns of the set match s. Each pattern counts at most once.
func (p PatternSet) Count(s string) int {
	n := 0
	for _, re := range p.Patterns {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// Any reports whether at least one pattern matches s.
func (p PatternSet) Any(s string) bool {
	for _, re := range p.Patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func set(name string, exprs ...string) PatternSet {
	ps := PatternSet{Name: name, Patterns: make([]*regexp.Regexp, len(exprs))}
	for i, e := range exprs {
		ps.Patterns[i] = regexp.MustCompile(`(?i)` + e)
	}
	return ps
}

// Capability pattern tables.
var (
	AuthPositive = set("auth_positive",
		`\blogin\b`,
		`\bsign[ -]?in\b`,
		`\bsign[ -]?up\b`,
		`\buser accounts?\b`,
		`\baccounts?\b`,
		`\bauth(?:entication)?\b`,
		`\bsessions?\b`,
		`\bpermissions?\b`,
		`\bprofiles?\b`,
	)

	AuthNegative = set("auth_negative",
		`\bno auth\b`,
		`\bwithout auth\b`,
		`\bno login\b`,
		`\bwithout login\b`,
		`\bno user accounts?\b`,
		`\banonymous users?\b`,
		`\bguest mode\b`,
		`\bsingle user\b`,
	)

	DatabasePositive = set("database_positive",
		`\bsave\b`,
		`\bsaved\b`,
		`\bstore data\b`,
		`\bstored\b`,
		`\bpersist(?:ence|ent)?\b`,
		`\bhistory\b`,
		`\bdatabase\b`,
		`\bdb\b`,
		`\bpostgres\b`,
		`\bsupabase\b`,
		`\brecords?\b`,
		`\bcrud\b`,
		`\brealtime\b`,
		`\bsync\b`,
	)

	DatabaseNegative = set("database_negative",
		`\bno database\b`,
		`\bwithout database\b`,
		`\bno db\b`,
		`\bwithout db\b`,
		`\bstateless\b`,
		`\bno persistence\b`,
		`\bin-memory only\b`,
		`\bclient-only\b`,
	)

	Deployment = set("deployment",
		`\bdeploy\b`,
		`\bdeployment\b`,
		`\bhost\b`,
		`\bhosting\b`,
		`\bproduction\b`,
		`\bship\b`,
		`\blaunch\b`,
		`\bgo live\b`,
		`\bshare\b`,
		`\bpublic url\b`,
	)

	ExternalAPI = set("external_api",
		`\bexternal api\b`,
		`\bpublic api\b`,
		`\bthird-party api\b`,
		`\bapi\b`,
		`\bcompare\b.*\bprices?\b`,
		`\bprices?\b`,
		`\bdifferent stores?\b`,
		`\bweather\b`,
		`\bstock\b`,
		`\bflight\b`,
		`\bmarket data\b`,
	)

	AIAPI = set("ai_api",
		`\bai\b`,
		`\bllm\b`,
		`\bopenai\b`,
		`\bgpt\b`,
		`\bchatbot\b`,
		`\bassistant\b`,
		`\bsummar(?:ize|ise|ization)\b`,
		`\bembeddings?\b`,
	)

	MultiUser = set("multi_user",
		`\bmulti-user\b`,
		`\bteam\b`,
		`\bcollaborat`,
		`\bshared\b`,
	)

	MarketplaceAmbiguity = set("marketplace_ambiguity",
		`\bmarketplace\b`,
		`\bplatform\b`,
		`\bcommunity\b`,
		`\bdirectory\b`,
		`\bportal\b`,
	)

	RealtimeOrBackground = set("realtime_or_background",
		`\brealtime\b`,
		`\bbackground\b`,
		`\bcron\b`,
		`\bqueue\b`,
		`\bwebhook\b`,
		`\bworker\b`,
	)

	// LowLevelDetail flags implementation-level advice in model responses.
	LowLevelDetail = set("low_level_detail",
		`\bhtml\b`,
		`\bcss\b`,
		`\bjavascript\b`,
		`\btypescript\b`,
		`\bcreate files?\b`,
		`\bfile[- ]by[- ]file\b`,
		`\bwebpack\b`,
		`\bboilerplate\b`,
		`\bfolder structure\b`,
		`\bsetup config\b`,
	)
)

// Compound phrasings that add bonus weight on top of the tables.
var (
	explicitLogin = set("explicit_login", `\blogin\b`, `\bsign[ -]?in\b`, `\bauth(?:entication)?\b`)
	savedData     = set("saved_data", `\bsaved?\s+(tasks?|items?|records?|data|history|messages?)\b`)
	chatHistory   = set("chat_history", `\bchat history\b`, `\bconversation history\b`, `\bhistory\b.*\bchat\b`)
	comparePrices = set("compare_prices", `\bcompar(?:e|es|ing)\b.*\bprices?\b`)
	grocery       = set("grocery", `\bgrocery\b`)
	price         = set("price", `\bprices?\b`)
	compareVerb   = set("compare", `\bcompar(?:e|es|ing)\b`)
	stores        = set("stores", `\bstores?\b`)
	aiApp         = set("ai_app", `\b(ai|llm|gpt|openai|assistant|chatbot)\b`)
	aiStudyHelper = set("ai_study_assistant", `\bai study assistant\b`)
)

// PatternSets returns every table used for scoring, in a fixed order.
func PatternSets() []PatternSet {
	return []PatternSet{
		AuthPositive, AuthNegative,
		DatabasePositive, DatabaseNegative,
		Deployment, ExternalAPI, AIAPI,
		MultiUser, MarketplaceAmbiguity, RealtimeOrBackground,
		LowLevelDetail,
		explicitLogin, savedData, chatHistory,
		comparePrices, grocery, price, compareVerb, stores,
		aiApp, aiStudyHelper,
	}
}
