package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"valence/internal/pipeline"
	"valence/internal/sentiment"
)

func renderOutcomes(out io.Writer, outcomes []analysisOutcome, colorize bool) {
	for i, outcome := range outcomes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		for _, line := range renderSectionHeader(outcome.Video, colorize) {
			fmt.Fprintln(out, line)
		}
		if outcome.Report == nil {
			fmt.Fprintln(out, renderStatusLine("Result", statusError, outcome.Error, colorize))
			continue
		}
		fmt.Fprint(out, renderReport(*outcome.Report, colorize))
	}
}

func renderReport(report pipeline.Report, colorize bool) string {
	var b strings.Builder

	rows := make([][]string, 0, sentiment.ModalityCount)
	for i, result := range report.Modalities() {
		rows = append(rows, []string{
			result.Modality.String(),
			result.Sentiment.String(),
			fmt.Sprintf("%.2f", result.Score),
			fmt.Sprintf("%.2f", result.Confidence),
			fmt.Sprintf("%.2f", report.Fusion.Weights[i]),
			modalityDetail(result),
		})
	}
	b.WriteString(renderTable(
		[]string{"Modality", "Sentiment", "Score", "Confidence", "Weight", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	b.WriteString("\n")

	fusion := report.Fusion
	b.WriteString(renderStatusLine("Overall", sentimentKind(fusion.Sentiment),
		fmt.Sprintf("%s (score %.2f, confidence %.2f)", fusion.Sentiment, fusion.Score, fusion.Confidence), colorize))
	b.WriteString("\n")
	if fusion.Inconsistency {
		b.WriteString(renderStatusLine("Inconsistency", statusWarn, "modalities disagree", colorize))
	} else {
		b.WriteString(renderStatusLine("Inconsistency", statusInfo, "none", colorize))
	}
	b.WriteString("\n")
	if transcript := strings.TrimSpace(report.Transcript); transcript != "" {
		b.WriteString(renderStatusLine("Transcript", statusInfo, transcript, colorize))
		b.WriteString("\n")
	}
	b.WriteString(renderStatusLine("Duration", statusInfo, fmt.Sprintf("%.1fs", report.Duration), colorize))
	b.WriteString("\n")
	b.WriteString(renderStatusLine("Elapsed", statusInfo, report.Elapsed.Round(time.Millisecond).String(), colorize))
	b.WriteString("\n")
	b.WriteString(renderStatusLine("Request", statusInfo, report.RequestID, colorize))
	b.WriteString("\n")
	return b.String()
}

func modalityDetail(result sentiment.ModalityResult) string {
	var parts []string
	if result.Degraded != sentiment.DegradedNone {
		parts = append(parts, "degraded: "+string(result.Degraded))
	}
	switch result.Modality {
	case sentiment.Text:
		if result.Label != "" {
			parts = append(parts, "label "+result.Label)
		}
	case sentiment.Visual:
		if result.Frames > 0 {
			parts = append(parts, fmt.Sprintf("%d frames", result.Frames))
		}
		if result.MajorityVote != nil {
			parts = append(parts, "majority "+result.MajorityVote.String())
		}
	case sentiment.Audio:
		if result.PitchHz > 0 {
			parts = append(parts, fmt.Sprintf("pitch %.0f Hz", result.PitchHz))
		}
	}
	return strings.Join(parts, ", ")
}

func sentimentKind(s sentiment.Sentiment) statusKind {
	switch s {
	case sentiment.Positive:
		return statusOK
	case sentiment.Negative:
		return statusError
	default:
		return statusInfo
	}
}
