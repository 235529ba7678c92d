package core

// TerrainSource 地形轮廓生成器（黑盒），返回 width*height 的行优先占据网格
type TerrainSource interface {
	Silhouette(width, height int, rng Rand) []bool
}

// SilhouetteFunc 允许普通函数作为 TerrainSource
type SilhouetteFunc func(width, height int, rng Rand) []bool

func (f SilhouetteFunc) Silhouette(width, height int, rng Rand) []bool {
	return f(width, height, rng)
}

// cityBand 一排建筑的随机参数（区间左闭右开）
type cityBand struct {
	start, endMargin int
	gapMin, gapMax   float64
	wMin, wMax       float64
	hMin, hMax       float64
}

// 从矮而密到高而稀的三排建筑
var cityBands = []cityBand{
	{start: 100, endMargin: 120, gapMin: 0, gapMax: 5, wMin: 5, wMax: 20, hMin: 10, hMax: 18},
	{start: 120, endMargin: 180, gapMin: 5, gapMax: 20, wMin: 10, wMax: 40, hMin: 20, hMax: 50},
	{start: 160, endMargin: 220, gapMin: 30, gapMax: 125, wMin: 8, wMax: 20, hMin: 70, hMax: 90},
}

// 炮座支柱
const (
	supportWidth  = 20
	supportHeight = 100
)

// CityGenerator 生成城市天际线，并在屏幕中央放置加农炮的支柱
type CityGenerator struct{}

func (CityGenerator) Silhouette(width, height int, rng Rand) []bool {
	cells := make([]bool, width*height)

	for _, band := range cityBands {
		x := band.start
		for x < width-band.endMargin {
			x += max(1, int(uniform(rng, band.gapMin, band.gapMax)))
			w := int(uniform(rng, band.wMin, band.wMax))
			h := int(uniform(rng, band.hMin, band.hMax))
			addBuilding(cells, width, height, x+w/2, w, h)
		}
	}

	addBuilding(cells, width, height, width/2, supportWidth, supportHeight)
	return cells
}

// addBuilding 以 xMid 为中心填充一栋从地面升起的建筑，越界部分被忽略
func addBuilding(cells []bool, width, height, xMid, w, h int) {
	for x := max(0, xMid-w/2); x < min(width, xMid+w/2); x++ {
		for y := max(0, height-h); y < height; y++ {
			cells[y*width+x] = true
		}
	}
}
