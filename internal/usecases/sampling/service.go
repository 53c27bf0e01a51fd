package sampling

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/pkg/utils"
)

// Faixas de tráfego simulado por dia. Os valores sorteados ficam estáveis por
// janela porque o gerador é semeado com a entidade e o início da janela.
const (
	minDailyImpressions = 2000
	maxDailyImpressions = 10000

	minClickRate = 0.01
	maxClickRate = 0.05

	minConversionRate = 0.02
	maxConversionRate = 0.10
)

const hoursPerDay = 24

type SamplingService interface {
	Sample(entity *domain.Entity, dailyCost decimal.Decimal, now time.Time) domain.PerformanceDelta
}

type PerformanceSamplingService struct{}

func NewPerformanceSamplingService() SamplingService {
	return &PerformanceSamplingService{}
}

// Sample calcula o delta de desempenho da entidade desde a última
// reconciliação. O resultado depende apenas da entidade, do registro anterior
// e do relógio recebido: com as mesmas entradas o delta é o mesmo, e uma
// reexecução imediata produz delta zero porque nenhum centavo acumulou na
// janela. Deltas nunca são negativos e respeitam o funil
// impressões >= cliques >= conversões.
func (s *PerformanceSamplingService) Sample(entity *domain.Entity, dailyCost decimal.Decimal, now time.Time) domain.PerformanceDelta {
	delta := domain.PerformanceDelta{Spend: decimal.Zero}

	// Entidade nunca reconciliada acumula desde a criação
	windowStart := entity.Performance.LastUpdatedAt
	if windowStart.IsZero() {
		windowStart = entity.CreatedAt
	}
	if windowStart.IsZero() {
		return delta
	}

	elapsed := now.Sub(windowStart)
	if elapsed <= 0 {
		return delta
	}

	elapsedDays := elapsed.Seconds() / (hoursPerDay * time.Hour.Seconds())

	spend := utils.RoundMoney(dailyCost.Mul(decimal.NewFromFloat(elapsedDays)))
	if !spend.IsPositive() {
		// Menos de um centavo acumulado: a janela ainda não vale uma escrita
		return delta
	}

	rng := rand.New(rand.NewSource(windowSeed(entity.ID, windowStart)))

	impressionsPerDay := minDailyImpressions + rng.Int63n(maxDailyImpressions-minDailyImpressions+1)
	clickRate := minClickRate + rng.Float64()*(maxClickRate-minClickRate)
	conversionRate := minConversionRate + rng.Float64()*(maxConversionRate-minConversionRate)

	delta.Impressions = int64(float64(impressionsPerDay) * elapsedDays)
	delta.Clicks = int64(float64(delta.Impressions) * clickRate)
	delta.Conversions = int64(float64(delta.Clicks) * conversionRate)
	delta.Spend = spend

	return delta
}

// windowSeed deriva uma semente estável da entidade e do início da janela,
// para que o mesmo ciclo sorteie sempre os mesmos números
func windowSeed(entityID string, windowStart time.Time) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d", entityID, windowStart.Unix())
	return int64(h.Sum64())
}
