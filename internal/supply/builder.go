package supply

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"taskmesh/pkg/apperror"
	"taskmesh/pkg/domain"
	"taskmesh/pkg/logger"
)

// Builder превращает сырые CSV цепочки поставок в тройку текстовых
// файлов случая. Чистая препроцессинг-стадия: никакой логики движка.
//
// Ожидаемые входы в каталоге:
//
//	orders.csv  - order_id,quantity[,eta]  (eta пусто = задача с t=0)
//	sites.csv   - site_id,capacity,region
//	lanes.csv   - from_site,to_site,distance
//
// Регионы нумеруются в группы в порядке первого появления.
type Builder struct {
	regionIDs map[string]int
}

// NewBuilder создаёт новый построитель
func NewBuilder() *Builder {
	return &Builder{regionIDs: make(map[string]int)}
}

// BuildCase читает CSV из inDir и пишет тройку файлов случая name в outDir
func (b *Builder) BuildCase(inDir, outDir, name string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	if err := b.buildTasks(
		filepath.Join(inDir, "orders.csv"),
		filepath.Join(outDir, name+"_tasks.txt"),
	); err != nil {
		return err
	}
	if err := b.buildAgents(
		filepath.Join(inDir, "sites.csv"),
		filepath.Join(outDir, name+"_agents.txt"),
	); err != nil {
		return err
	}
	return b.buildEdges(
		filepath.Join(inDir, "lanes.csv"),
		filepath.Join(outDir, name+"_edges.txt"),
	)
}

// buildTasks превращает заказы в строки `id size arriveTime`
func (b *Builder) buildTasks(csvPath, outPath string) error {
	return b.convert(csvPath, outPath, func(row []string, out io.Writer) error {
		if len(row) < 2 {
			logger.Warn("skipping short order row", "columns", len(row))
			return nil
		}
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return apperror.Wrap(err, apperror.CodeBadToken, "order id").WithDetail("token", row[0])
		}
		qty, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeBadToken, "order quantity").WithDetail("token", row[1])
		}
		arrive := domain.InitialArrival
		if len(row) >= 3 && row[2] != "" {
			arrive, err = strconv.Atoi(row[2])
			if err != nil {
				return apperror.Wrap(err, apperror.CodeBadToken, "order eta").WithDetail("token", row[2])
			}
		}
		_, err = fmt.Fprintf(out, "%d %g %d\n", id, qty, arrive)
		return err
	})
}

// buildAgents превращает площадки в строки `id capacity groupId`
func (b *Builder) buildAgents(csvPath, outPath string) error {
	return b.convert(csvPath, outPath, func(row []string, out io.Writer) error {
		if len(row) < 3 {
			logger.Warn("skipping short site row", "columns", len(row))
			return nil
		}
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return apperror.Wrap(err, apperror.CodeBadToken, "site id").WithDetail("token", row[0])
		}
		capacity, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeBadToken, "site capacity").WithDetail("token", row[1])
		}
		if capacity < 0 {
			return apperror.Newf(apperror.CodeNegativeCapacity, "site %d has negative capacity %f", id, capacity)
		}
		_, err = fmt.Fprintf(out, "%d %g %d\n", id, capacity, b.regionID(row[2]))
		return err
	})
}

// buildEdges превращает маршруты в строки `u v weight`
func (b *Builder) buildEdges(csvPath, outPath string) error {
	return b.convert(csvPath, outPath, func(row []string, out io.Writer) error {
		if len(row) < 3 {
			logger.Warn("skipping short lane row", "columns", len(row))
			return nil
		}
		u, err := strconv.Atoi(row[0])
		if err != nil {
			return apperror.Wrap(err, apperror.CodeBadToken, "lane origin").WithDetail("token", row[0])
		}
		v, err := strconv.Atoi(row[1])
		if err != nil {
			return apperror.Wrap(err, apperror.CodeBadToken, "lane destination").WithDetail("token", row[1])
		}
		dist, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeBadToken, "lane distance").WithDetail("token", row[2])
		}
		_, err = fmt.Fprintf(out, "%d %d %g\n", u, v, dist)
		return err
	})
}

// regionID выдаёт номер группы по имени региона
func (b *Builder) regionID(region string) int {
	if id, ok := b.regionIDs[region]; ok {
		return id
	}
	id := len(b.regionIDs)
	b.regionIDs[region] = id
	return id
}

// Regions возвращает известные регионы по номеру группы
func (b *Builder) Regions() []string {
	out := make([]string, len(b.regionIDs))
	for name, id := range b.regionIDs {
		out[id] = name
	}
	return out
}

// convert прогоняет все строки CSV через row-обработчик.
// Первая строка считается заголовком и пропускается.
func (b *Builder) convert(csvPath, outPath string, handle func([]string, io.Writer) error) error {
	in, err := os.Open(csvPath)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeMissingFile, "cannot open csv").WithDetail("path", csvPath)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return apperror.Wrap(err, apperror.CodeParse, "csv read error").WithDetail("path", csvPath)
		}
		if first {
			first = false
			continue
		}
		if err := handle(row, out); err != nil {
			return err
		}
	}
	return nil
}

// SortedRegions возвращает регионы в алфавитном порядке (для логов)
func (b *Builder) SortedRegions() []string {
	regions := b.Regions()
	sort.Strings(regions)
	return regions
}
