package intent

// Confidence holds per-capability scores in [0, 1].
type Confidence struct {
	NeedsAuth        float64 `json:"needsAuth"`
	NeedsDatabase    float64 `json:"needsDatabase"`
	NeedsDeployment  float64 `json:"needsDeployment"`
	NeedsExternalAPI float64 `json:"needsExternalApi"`
	NeedsAIAPI       float64 `json:"needsAiApi"`
}

// Negations records explicit opt-outs found in the message.
type Negations struct {
	Auth     bool `json:"auth"`
	Database bool `json:"database"`
}

// Signals are binary language flags used for complexity scoring.
type Signals struct {
	MultiUser            bool `json:"multiUser"`
	RealtimeOrBackground bool `json:"realtimeOrBackground"`
	Deployment           bool `json:"deployment"`
}

// Inference is the raw output of InferConfidence.
type Inference struct {
	Confidence Confidence `json:"confidence"`
	Negations  Negations  `json:"explicitNegations"`
	Signals    Signals    `json:"signals"`
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// per scales a match count. The explicit conversion rounds the product so
// the compiler cannot fuse it into the following addition.
func per(n int, w float64) float64 {
	return float64(float64(n) * w)
}

func weight(cond bool, w float64) float64 {
	if cond {
		return w
	}
	return 0
}

// InferConfidence scores one message against the capability pattern tables.
// It is a pure function of msg.
func InferConfidence(msg string) Inference {
	authPos := AuthPositive.Count(msg)
	authNeg := AuthNegative.Count(msg)
	dbPos := DatabasePositive.Count(msg)
	dbNeg := DatabaseNegative.Count(msg)
	deploy := Deployment.Count(msg)
	ext := ExternalAPI.Count(msg)
	ai := AIAPI.Count(msg)

	multiUser := MultiUser.Any(msg)
	realtime := RealtimeOrBackground.Any(msg)
	marketplace := MarketplaceAmbiguity.Any(msg)
	login := explicitLogin.Any(msg)
	saved := savedData.Any(msg)
	history := chatHistory.Any(msg)
	groceryPrices := comparePrices.Any(msg) || (grocery.Any(msg) && price.Any(msg))
	compareStores := compareVerb.Any(msg) && stores.Any(msg)
	aiLanguage := aiApp.Any(msg)
	studyAssistant := aiStudyHelper.Any(msg)

	return Inference{
		Confidence: Confidence{
			NeedsAuth: clamp(0.08 +
				per(authPos, 0.52) +
				weight(login, 0.16) +
				weight(multiUser, 0.15) +
				weight(marketplace, 0.38) -
				per(authNeg, 0.75)),
			NeedsDatabase: clamp(0.08 +
				per(dbPos, 0.3) +
				weight(saved, 0.42) +
				weight(history, 0.38) +
				weight(realtime, 0.16) +
				weight(multiUser, 0.08) -
				weight(marketplace, 0.35) -
				per(dbNeg, 0.8)),
			NeedsDeployment: clamp(0.05 +
				per(deploy, 0.3) +
				weight(multiUser, 0.08)),
			NeedsExternalAPI: clamp(0.05 +
				per(ext, 0.24) +
				weight(groceryPrices, 0.35) +
				weight(compareStores, 0.12)),
			NeedsAIAPI: clamp(0.03 +
				per(ai, 0.34) +
				weight(studyAssistant, 0.32) +
				weight(history && aiLanguage, 0.18)),
		},
		Negations: Negations{
			Auth:     authNeg > 0,
			Database: dbNeg > 0,
		},
		Signals: Signals{
			MultiUser:            multiUser,
			RealtimeOrBackground: realtime,
			Deployment:           deploy > 0,
		},
	}
}
