package mtbridge

import "strings"

// Detect identifies the language of text. A non-empty hint that the
// detector recognises biases the result toward that language; an unknown
// hint is ignored.
//
// When no candidate is found the result is {"un", false, 0}.
func (s *Service) Detect(text, hint string) (DetectionResult, error) {
	if s.detector == nil {
		return DetectionResult{}, &InvalidArgumentError{Name: "detector", Message: "no language detector configured"}
	}

	resolved := ""
	if h := strings.TrimSpace(hint); h != "" {
		if id, ok := s.detector.ResolveLanguage(h); ok {
			resolved = id
		} else {
			s.logger.Debug().Str("hint", h).Msg("ignoring unknown language hint")
		}
	}

	det, err := s.detector.DetectLanguage(text, resolved)
	if err != nil {
		return DetectionResult{}, &EngineInvocationError{Op: "detect", Cause: err}
	}
	return detectionResult(det), nil
}

func detectionResult(det Detection) DetectionResult {
	if len(det.Candidates) == 0 {
		return DetectionResult{Language: UnknownLanguage}
	}

	top := det.Candidates[0]
	code := top.Code
	if code == "" {
		code = UnknownLanguage
	}
	if len(code) > MaxLanguageCodeLen {
		code = code[:MaxLanguageCodeLen]
	}

	confidence := top.Percent
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return DetectionResult{
		Language:   code,
		Reliable:   det.Reliable,
		Confidence: confidence,
	}
}
