package service

import (
	"fmt"
	"strings"

	"github.com/UnendingLoop/BrandingStudio/internal/model"
	"github.com/UnendingLoop/BrandingStudio/internal/placement"
)

func validateQueryParams(req *model.ListRequest) {
	// Обрабатываем пустые значения, присваиваем дефолты если надо
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}

	// Валидируем поле типа сортировки
	sort := strings.TrimSpace(strings.ToLower(req.Sort))
	switch {
	case strings.Contains(sort, model.ByUUID):
		req.Sort = "export_uid"
	default:
		req.Sort = "created_at" // по дефолту ставим сортировку по времени создания
	}

	// Валидируем порядок
	order := strings.TrimSpace(strings.ToLower(req.Order))
	switch {
	case strings.Contains(order, model.OrderASC):
		req.Order = "ASC"
	default:
		req.Order = "DESC" // по дефолту ставим сортировку "новое-выше"
	}
}

// placementEvents turns a partial update into events: preset, size, margin, opacity
func placementEvents(upd *model.PlacementUpdate) ([]placement.Event, error) {
	if upd == nil || upd.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", model.ErrIncorrectParams)
	}

	events := make([]placement.Event, 0, 4)
	if upd.Preset != nil {
		p := model.Preset(strings.ToUpper(strings.TrimSpace(string(*upd.Preset))))
		if !p.IsAnchor() {
			return nil, fmt.Errorf("%w: %q", model.ErrIncorrectPreset, *upd.Preset)
		}
		events = append(events, placement.PresetSelected(p))
	}
	if upd.SizePercentage != nil {
		events = append(events, placement.SizeChanged(*upd.SizePercentage))
	}
	if upd.Margin != nil {
		events = append(events, placement.MarginChanged(*upd.Margin))
	}
	if upd.Opacity != nil {
		events = append(events, placement.OpacityChanged(*upd.Opacity))
	}
	return events, nil
}
