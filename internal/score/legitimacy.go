package score

import "github.com/ppiankov/newsgate/internal/model"

// Cross-reference tiers
const (
	crossRefAll          = 98
	crossRefMajorPlusOne = 95
	crossRefMajorPair    = 92
	crossRefTrustedURL   = 90
	crossRefAny          = 85
	crossRefNone         = 20

	noMatchLegitimacy = 20
)

// NewLegitimacy scores corroboration by the reference outlets. trustedURL
// reports whether the article itself was published by one of them.
func NewLegitimacy(outlets []model.OutletVerification, trustedURL bool) model.LegitimacyCheck {
	l := model.LegitimacyCheck{
		BBC:      notFound(model.OutletBBC),
		CNN:      notFound(model.OutletCNN),
		ABC:      notFound(model.OutletABC),
		Guardian: notFound(model.OutletGuardian),
	}
	for _, o := range outlets {
		if o.MatchingArticles == nil {
			o.MatchingArticles = []model.MatchedSource{}
		}
		switch o.Outlet {
		case model.OutletBBC:
			l.BBC = o
		case model.OutletCNN:
			l.CNN = o
		case model.OutletABC:
			l.ABC = o
		case model.OutletGuardian:
			l.Guardian = o
		}
	}

	l.CrossReference = CrossReferenceFor(l, trustedURL)

	found, total := 0, 0
	for _, o := range l.Outlets() {
		if o.Found {
			found++
			total += o.Similarity
		}
	}

	switch {
	case found == 0:
		l.OverallScore = noMatchLegitimacy
	case trustedURL:
		l.OverallScore = round(float64(total+l.CrossReference.Score) / float64(found+1))
	case found >= 2:
		l.OverallScore = round(float64(total)/float64(found)*0.7 + float64(l.CrossReference.Score)*0.3)
	default:
		l.OverallScore = round(float64(total)*0.6 + float64(l.CrossReference.Score)*0.4)
	}

	return l
}

// CrossReferenceFor assigns the tiered corroboration score. BBC and CNN form
// the major pair; ABC News or the Guardian on top of it is the next tier.
func CrossReferenceFor(l model.LegitimacyCheck, trustedURL bool) model.CrossReference {
	bbc, cnn, abc, guardian := l.BBC.Found, l.CNN.Found, l.ABC.Found, l.Guardian.Found
	majorPair := bbc && cnn
	anyFound := bbc || cnn || abc || guardian

	var score int
	switch {
	case majorPair && abc && guardian:
		score = crossRefAll
	case majorPair && (abc || guardian):
		score = crossRefMajorPlusOne
	case majorPair:
		score = crossRefMajorPair
	case trustedURL && anyFound:
		score = crossRefTrustedURL
	case anyFound:
		score = crossRefAny
	default:
		score = crossRefNone
	}

	var details string
	switch {
	case majorPair && (abc || guardian):
		details = "Content corroborated by multiple authoritative news sources."
	case trustedURL && anyFound:
		details = "Content verified by a trusted authoritative news source."
	case anyFound:
		details = "Content matches patterns found in major news outlets."
	default:
		details = "No verification found in major news databases."
	}

	return model.CrossReference{Score: score, Details: details}
}

func notFound(o model.Outlet) model.OutletVerification {
	return model.OutletVerification{
		Outlet:           o,
		MatchingArticles: []model.MatchedSource{},
	}
}
