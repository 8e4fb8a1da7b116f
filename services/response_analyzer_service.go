// services/response_analyzer_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/mentions"
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

const classifierSystemInstruction = "You are a precise text analyst. Follow the instructions exactly. Output only what is asked."

type responseAnalyzerService struct {
	classifier Classifier
}

func NewResponseAnalyzerService(classifier Classifier) ResponseAnalyzerService {
	return &responseAnalyzerService{classifier: classifier}
}

// Analyze extracts mention analytics from one raw engine response. It
// issues at most two classification calls: one for the brand, one batched
// call covering every mentioned competitor. A response that never mentions
// the brand skips the brand call entirely.
func (s *responseAnalyzerService) Analyze(ctx context.Context, rawText string, brand Identity, competitors []Identity, citations []string) (*models.ParsedResult, error) {
	brandNames := brand.AllNames()

	if !mentions.Mentioned(brandNames, rawText) {
		competitorMentions, competitorCost, err := s.analyzeCompetitors(ctx, rawText, competitors)
		if err != nil {
			return nil, err
		}
		return &models.ParsedResult{
			BrandMentioned:      false,
			MentionPosition:     models.PositionNotMentioned,
			IsTopRecommendation: false,
			Sentiment:           models.SentimentNeutral,
			CompetitorMentions:  competitorMentions,
			Citations:           citations,
			AnalysisCost:        competitorCost,
		}, nil
	}

	position := mentions.Position(rawText, brandNames)

	isTop, sentiment, brandCost, err := s.analyzeBrand(ctx, rawText, brand.Name)
	if err != nil {
		return nil, err
	}

	competitorMentions, competitorCost, err := s.analyzeCompetitors(ctx, rawText, competitors)
	if err != nil {
		return nil, err
	}

	return &models.ParsedResult{
		BrandMentioned:      true,
		MentionPosition:     position,
		IsTopRecommendation: isTop,
		Sentiment:           sentiment,
		CompetitorMentions:  competitorMentions,
		Citations:           citations,
		AnalysisCost:        brandCost + competitorCost,
	}, nil
}

// analyzeBrand asks two questions in one call: is the brand the top
// recommendation, and what is the sentiment toward it. Unparseable content
// degrades to defaults; only call failures return an error.
func (s *responseAnalyzerService) analyzeBrand(ctx context.Context, rawText, brandName string) (bool, models.Sentiment, float64, error) {
	prompt := fmt.Sprintf(
		"Analyze the following AI-generated response about the brand %q.\n\n"+
			"--- BEGIN RESPONSE ---\n%s\n--- END RESPONSE ---\n\n"+
			"Answer the following two questions. Respond ONLY with two lines, no extra text:\n"+
			"1. Is %q the top or primary recommendation? Answer: yes or no\n"+
			"2. What is the sentiment toward %q? Answer: positive, neutral, negative, or mixed",
		brandName, rawText, brandName, brandName)

	answer, cost, err := s.classifier.Complete(ctx, classifierSystemInstruction, prompt, 50)
	if err != nil {
		return false, "", 0, err
	}

	lines := nonEmptyLines(strings.ToLower(strings.TrimSpace(answer)))

	isTop := false
	if len(lines) > 0 {
		isTop = strings.Contains(lines[0], "yes")
	}

	sentiment := models.SentimentNeutral
	if len(lines) >= 2 {
		if found, ok := firstSentimentToken(lines[1]); ok {
			sentiment = found
		}
	} else if len(lines) == 1 {
		// Fallback: look in the single line for sentiment keywords
		for _, candidate := range models.ValidSentiments {
			if strings.Contains(lines[0], string(candidate)) {
				sentiment = candidate
				break
			}
		}
	}

	return isTop, sentiment, cost, nil
}

// analyzeCompetitors determines mention, position, sentiment and top flag
// for every competitor. Sentiment and top flag come from a single batched
// call covering all mentioned competitors.
func (s *responseAnalyzerService) analyzeCompetitors(ctx context.Context, rawText string, competitors []Identity) (models.CompetitorMentionMap, float64, error) {
	results := make(models.CompetitorMentionMap, len(competitors))
	var mentioned []Identity

	for _, comp := range competitors {
		allNames := comp.AllNames()
		if !mentions.Mentioned(allNames, rawText) {
			results[comp.Name] = models.CompetitorMention{
				Mentioned: false,
				Position:  models.PositionNotMentioned,
				Sentiment: models.SentimentNeutral,
			}
			continue
		}
		results[comp.Name] = models.CompetitorMention{
			Mentioned: true,
			Position:  mentions.Position(rawText, allNames),
			Sentiment: models.SentimentNeutral, // placeholder until the batch call
		}
		mentioned = append(mentioned, comp)
	}

	if len(mentioned) == 0 {
		return results, 0, nil
	}

	verdicts, cost, err := s.batchCompetitorClassification(ctx, rawText, mentioned)
	if err != nil {
		return nil, 0, err
	}
	for name, verdict := range verdicts {
		entry, ok := results[name]
		if !ok {
			continue
		}
		entry.Sentiment = verdict.sentiment
		entry.IsTopRecommendation = verdict.isTop
		results[name] = entry
	}

	return results, cost, nil
}

type competitorVerdict struct {
	sentiment models.Sentiment
	isTop     bool
}

// batchCompetitorClassification issues one call for all mentioned
// competitors and parses the per-line replies. Competitors the reply does
// not resolve keep neutral defaults.
func (s *responseAnalyzerService) batchCompetitorClassification(ctx context.Context, rawText string, competitors []Identity) (map[string]competitorVerdict, float64, error) {
	names := make([]string, len(competitors))
	var numbered strings.Builder
	for i, comp := range competitors {
		names[i] = comp.Name
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, comp.Name)
	}

	prompt := fmt.Sprintf(
		"Analyze the following AI-generated response for sentiment toward each of the listed brands/products.\n\n"+
			"--- BEGIN RESPONSE ---\n%s\n--- END RESPONSE ---\n\n"+
			"Brands to analyze:\n%s\n"+
			"For each brand, respond with ONLY the brand name followed by a colon, "+
			"exactly one sentiment word (positive, neutral, negative, or mixed), a comma, "+
			"and top=yes or top=no indicating whether that brand is the top or primary recommendation. "+
			"One per line, in the same order.\n"+
			"Example format:\n"+
			"BrandA: positive, top=no\n"+
			"BrandB: neutral, top=no",
		rawText, numbered.String())

	answer, cost, err := s.classifier.Complete(ctx, classifierSystemInstruction, prompt, 200)
	if err != nil {
		return nil, 0, err
	}

	verdicts := make(map[string]competitorVerdict)
	for _, line := range nonEmptyLines(strings.TrimSpace(answer)) {
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		rawName := strings.TrimSpace(line[:colon])
		rest := strings.ToLower(strings.TrimSpace(line[colon+1:]))

		sentiment, ok := firstSentimentToken(rest)
		if !ok {
			continue
		}
		matched := matchCompetitorName(rawName, names)
		if matched == "" {
			continue
		}
		verdicts[matched] = competitorVerdict{
			sentiment: sentiment,
			isTop:     strings.Contains(rest, "top=yes"),
		}
	}

	// Ensure every mentioned competitor has an entry
	for _, name := range names {
		if _, ok := verdicts[name]; !ok {
			verdicts[name] = competitorVerdict{sentiment: models.SentimentNeutral}
		}
	}

	return verdicts, cost, nil
}

// matchCompetitorName fuzzily matches an LLM-returned name to a known
// competitor name: exact case-insensitive first, then containment in
// either direction.
func matchCompetitorName(rawName string, knownNames []string) string {
	rawLower := strings.ToLower(strings.TrimSpace(rawName))
	for _, name := range knownNames {
		if strings.ToLower(name) == rawLower {
			return name
		}
	}
	for _, name := range knownNames {
		nameLower := strings.ToLower(name)
		if strings.Contains(rawLower, nameLower) || strings.Contains(nameLower, rawLower) {
			return name
		}
	}
	return ""
}

// firstSentimentToken scans whitespace- and comma-separated tokens for the
// first valid sentiment word, ignoring surrounding punctuation.
func firstSentimentToken(line string) (models.Sentiment, bool) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	for _, field := range fields {
		cleaned := stripNonLetters(field)
		for _, candidate := range models.ValidSentiments {
			if cleaned == string(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func stripNonLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
