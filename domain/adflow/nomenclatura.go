package adflow

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"marketflow/ads"
	"marketflow/domain/creator"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NomenclaturaInput carries every token of a generated creative name.
type NomenclaturaInput struct {
	AdNumber     int
	ApprovalDate time.Time
	OriginCode   string
	CreatorCode  string

	NomeDescritivo string
	Tema           string
	Estilo         string
	Formato        string
	Tempo          string
	Tamanho        string

	MostraProduto bool
	HookNumber    int
	VersionNumber int
	IsPost        bool
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeName uppercases, strips accents and non-alphanumerics, and cuts
// at 25 characters.
func SanitizeName(name string) string {
	upper := strings.ToUpper(stripAccents(name))
	var b strings.Builder
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	sanitized := b.String()
	if len(sanitized) > 25 {
		return sanitized[:25]
	}
	return sanitized
}

// GenerateCreatorCode derives a nomenclatura token for creators without an
// explicit code: one word keeps its first 6 letters, multiple words
// contribute 3 letters each up to 8.
func GenerateCreatorCode(name string) string {
	upper := strings.ToUpper(stripAccents(name))
	var b strings.Builder
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || r == ' ' {
			b.WriteRune(r)
		}
	}
	words := strings.Fields(b.String())

	if len(words) == 0 {
		return "UNKNWN"
	}
	if len(words) == 1 {
		w := words[0]
		if len(w) > 6 {
			return w[:6]
		}
		return w
	}

	var initials strings.Builder
	for _, w := range words {
		if len(w) > 3 {
			w = w[:3]
		}
		initials.WriteString(w)
	}
	code := initials.String()
	if len(code) > 8 {
		return code[:8]
	}
	return code
}

// GenerateNomenclatura renders
// AD####_YYYYMMDD_PRODUTORA_INFLUENCER_NOME_TEMA_ESTILO_FORMATO_TEMPO_TAMANHO
// with the optional suffixes _PROD, _HK#, _V# and _POST, in that order.
func GenerateNomenclatura(input NomenclaturaInput) string {
	parts := []string{
		fmt.Sprintf("AD%04d", input.AdNumber),
		input.ApprovalDate.Format("20060102"),
		input.OriginCode,
		input.CreatorCode,
		SanitizeName(input.NomeDescritivo),
		input.Tema,
		input.Estilo,
		input.Formato,
		strings.TrimPrefix(input.Tempo, "T"),
		strings.TrimPrefix(input.Tamanho, "S"),
	}

	if input.MostraProduto {
		parts = append(parts, "PROD")
	}
	if input.HookNumber > 1 {
		parts = append(parts, fmt.Sprintf("HK%d", input.HookNumber))
	}
	if input.VersionNumber > 1 {
		parts = append(parts, fmt.Sprintf("V%d", input.VersionNumber))
	}
	if input.IsPost {
		parts = append(parts, "POST")
	}

	return strings.Join(parts, "_")
}

var nowFunc = time.Now

// GenerateNomenclaturaForVideo writes nomenclatura_gerada on every
// deliverable of the video that already carries an AD number.
func GenerateNomenclaturaForVideo(videoId types.ID, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		video := AdVideo{ID: videoId}
		if err := tx.Where(&video).First(&video).Error; err != nil {
			return err
		}
		project := AdProject{ID: video.ProjectID}
		if err := tx.Where(&project).First(&project).Error; err != nil {
			return err
		}
		origin := AdOrigin{ID: project.OriginID}
		if err := tx.Where(&origin).First(&origin).Error; err != nil {
			return err
		}

		originCode := origin.Code
		if originCode == "" {
			originCode = "OUTRO"
		}
		creatorCode := "NO1"
		if video.CriadorID != nil {
			criador := creator.Creator{ID: *video.CriadorID}
			if err := tx.Where(&criador).First(&criador).Error; err != nil {
				return err
			}
			creatorCode = criador.Code
			if creatorCode == "" {
				creatorCode = GenerateCreatorCode(criador.Name)
			}
		}

		var deliverables []AdDeliverable
		if err := tx.Where("video_id = ? AND ad_number IS NOT NULL", videoId).
			Order("hook_number ASC").Find(&deliverables).Error; err != nil {
			return err
		}

		for _, d := range deliverables {
			nomenclatura := GenerateNomenclatura(NomenclaturaInput{
				AdNumber:       *d.AdNumber,
				ApprovalDate:   nowFunc(),
				OriginCode:     originCode,
				CreatorCode:    creatorCode,
				NomeDescritivo: video.NomeDescritivo,
				Tema:           video.Tema,
				Estilo:         video.Estilo,
				Formato:        video.Formato,
				Tempo:          d.Tempo,
				Tamanho:        d.Tamanho,
				MostraProduto:  d.MostraProduto,
				HookNumber:     d.HookNumber,
				VersionNumber:  d.VersionNumber,
				IsPost:         d.IsPost,
			})
			if err := tx.Model(&AdDeliverable{ID: d.ID}).
				Update("nomenclatura_gerada", nomenclatura).Error; err != nil {
				return err
			}

			if err := ads.IndexCreativeFunc(&ads.CreativeDoc{
				DeliverableID: d.ID, VideoID: video.ID, ProjectID: project.ID,
				AdNumber: *d.AdNumber, Nomenclatura: nomenclatura,
				Tema: video.Tema, Estilo: video.Estilo, Formato: video.Formato,
				Tempo: d.Tempo, Tamanho: d.Tamanho, LinkAnuncio: video.LinkAnuncio,
				IndexTime: types.CurrentTimestamp()}, s); err != nil {
				return err
			}
		}
		return nil
	})
}
