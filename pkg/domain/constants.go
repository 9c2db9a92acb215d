package domain

import "math"

// Математические константы
const (
	Epsilon  = 1e-9
	Infinity = math.MaxFloat64
)

// Параметры сети по умолчанию
const (
	// BridgeWeight вес мостового ребра между компонентами связности
	BridgeWeight = 0.001

	// DefaultFaultRatio доля функционально отказавших агентов
	DefaultFaultRatio = 0.3

	// DefaultCostWeight вес суммарной стоимости в целевой функции
	DefaultCostWeight = 0.1

	// DefaultSurvivalWeight вес выживаемости в целевой функции
	DefaultSurvivalWeight = 0.9
)

// Уровни взаимодействия групп (двухточечное равномерное распределение)
var InteractionLevels = [2]float64{0.1, 0.2}

// Шкалы и нижние границы выживаемости
const (
	GroupLoadScale     = 200.0
	AgentLoadScale     = 60.0
	GroupSurvivalFloor = 0.6
	AgentSurvivalFloor = 0.3
)

// Sig сжимающая функция tanh(ln(x+1)); монотонна на x >= 0,
// Sig(0) = 0 и Sig(x) -> 1 при x -> +inf
func Sig(x float64) float64 {
	return math.Tanh(math.Log(x + 1))
}

// FloatEquals сравнивает два float64 с учётом Epsilon
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// FloatLess проверяет a < b с учётом Epsilon
func FloatLess(a, b float64) bool {
	return a < b-Epsilon
}

// FloatGreater проверяет a > b с учётом Epsilon
func FloatGreater(a, b float64) bool {
	return a > b+Epsilon
}

// IsZero проверяет, равно ли значение нулю
func IsZero(v float64) bool {
	return math.Abs(v) < Epsilon
}

// IsInf проверяет, является ли расстояние недостижимым
func IsInf(v float64) bool {
	return v >= Infinity-Epsilon
}
