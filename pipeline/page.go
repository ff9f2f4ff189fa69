package pipeline

import (
	"context"
	"strings"

	"github.com/wudi/packlist/observability"
	"github.com/wudi/packlist/record"
)

// ProcessPage parses the OCR lines of one page. Blank lines are skipped,
// rows that do not look like shipment rows are logged and dropped, and rows
// with an unreadable numeric column are logged as warnings. The returned
// records keep the order of lines.
func (p *Pipeline) ProcessPage(ctx context.Context, pageIndex int, lines []string) PageResult {
	res := PageResult{Index: pageIndex}
	if p == nil {
		return res
	}
	log := p.logger.With(observability.Int("page", pageIndex+1))
	for _, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		res.Lines++
		rec, out := record.ParseLine(raw)
		p.metrics.ObserveLine(out.Kind.String())
		switch out.Kind {
		case record.KindNotARow:
			res.NotARow++
			log.Info("line is not a shipment row", observability.String("line", raw), observability.Int("tokens", out.Tokens))
			continue
		case record.KindNumericFieldInvalid:
			res.Invalid++
			log.Warn("numeric field invalid",
				observability.String("line", raw),
				observability.String("field", out.Field),
				observability.String("token", out.Token))
			continue
		}
		if p.filter != nil {
			keep, err := p.filter.Keep(ctx, rec)
			if err != nil {
				log.Warn("record filter failed", observability.String("case_number", rec.CaseNumber), observability.Error("error", err))
			}
			if !keep {
				res.Filtered++
				log.Debug("record filtered", observability.String("case_number", rec.CaseNumber))
				continue
			}
		}
		log.Info("parsed line",
			observability.String("case_number", rec.CaseNumber),
			observability.String("lot_number", rec.LotNumber),
			observability.String("yarn_id", rec.YarnID),
			observability.String("description", rec.Description),
			observability.String("color", rec.Color),
			observability.Int("cones", rec.Cones),
			observability.Float64("gross_weight", rec.GrossWeight),
			observability.Int("tare_weight", rec.TareWeight),
			observability.Float64("net_weight", rec.NetWeight))
		res.Records = append(res.Records, rec)
	}
	p.metrics.ObserveRecords(len(res.Records))
	return res
}

// ProcessPageText is ProcessPage over a block of recognized text.
func (p *Pipeline) ProcessPageText(ctx context.Context, pageIndex int, text string) PageResult {
	return p.ProcessPage(ctx, pageIndex, splitLines(text))
}

// ProcessText parses previously recognized text without touching OCR. Pages
// are separated by form feeds, the way tesseract writes multi-page output.
func (p *Pipeline) ProcessText(ctx context.Context, text string) DocumentResult {
	if p == nil {
		return errorResult("error processing text: pipeline not configured", nil)
	}
	var pages []PageResult
	for i, chunk := range strings.Split(text, "\f") {
		if err := ctx.Err(); err != nil {
			return errorResult("error processing text: "+err.Error(), pages)
		}
		if i > 0 && strings.TrimSpace(chunk) == "" {
			continue
		}
		pages = append(pages, p.ProcessPageText(ctx, len(pages), chunk))
	}
	return successResult(pages)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
