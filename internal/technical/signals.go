package technical

import (
	"strings"

	"stocktracker/internal/model"
)

// buildSignals assembles the free-text signal list from the RSI, MACD and
// moving-average blocks, then derives the overall sentiment by counting
// bullish- vs bearish-tagged hints. A tie resolves to bearish: the comparison
// is a strict greater-than, kept intentionally (see DESIGN.md).
func buildSignals(ma model.MovingAverages, rsi model.RSIResult, macd model.MACDResult) model.SignalSummary {
	signals := []string{}

	switch rsi.Signal {
	case model.SignalOversold:
		signals = append(signals, "RSI indicates potential buy opportunity")
	case model.SignalOverbought:
		signals = append(signals, "RSI indicates potential sell opportunity")
	}

	switch macd.Signal {
	case model.SignalBullish:
		signals = append(signals, "MACD shows bullish momentum")
	case model.SignalBearish:
		signals = append(signals, "MACD shows bearish momentum")
	}

	if ma.PriceVsSMA20 == "above" && ma.PriceVsSMA50 == "above" {
		signals = append(signals, "Price above key moving averages - bullish trend")
	} else if ma.PriceVsSMA20 == "below" && ma.PriceVsSMA50 == "below" {
		signals = append(signals, "Price below key moving averages - bearish trend")
	}

	bullish, bearish := 0, 0
	for _, s := range signals {
		ls := strings.ToLower(s)
		if strings.Contains(ls, model.SentimentBullish) {
			bullish++
		}
		if strings.Contains(ls, model.SentimentBearish) {
			bearish++
		}
	}

	sentiment := model.SentimentBearish
	if bullish > bearish {
		sentiment = model.SentimentBullish
	}

	return model.SignalSummary{
		Signals:          signals,
		OverallSentiment: sentiment,
	}
}
