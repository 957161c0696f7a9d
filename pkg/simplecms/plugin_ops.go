package simplecms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AddPlugin places a content block into a placeholder at the requested
// tree position, shifting trailing siblings by one. The shift and insert
// run atomically in the repository, so concurrent placements into the
// same placeholder cannot interleave.
func (s *service) AddPlugin(ctx context.Context, req AddPluginRequest) (*Plugin, error) {
	if req.Position == "" {
		req.Position = PositionLastChild
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	placeholder, err := s.repository.GetPlaceholder(ctx, req.PlaceholderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load placeholder: %w", err)
	}

	desc, ok := s.pluginTypes.Get(req.PluginType)
	if !ok {
		return nil, fmt.Errorf("%w: plugin type %q is not registered", ErrValidation, req.PluginType)
	}
	if err := desc.ValidateData(req.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var (
		parentID *uuid.UUID
		position int
	)
	if req.TargetID != nil {
		target, err := s.repository.GetPlugin(ctx, *req.TargetID)
		if err != nil {
			return nil, fmt.Errorf("failed to load target plugin: %w", err)
		}
		if target.PlaceholderID != placeholder.ID {
			return nil, fmt.Errorf("%w: target plugin %s belongs to another placeholder", ErrValidation, target.ID)
		}

		switch req.Position {
		case PositionLastChild:
			n, err := s.repository.CountPlugins(ctx, PluginFilter{
				PlaceholderID: placeholder.ID,
				Language:      req.Language,
				ParentID:      &target.ID,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to count child plugins: %w", err)
			}
			parentID = &target.ID
			position = n
		case PositionFirstChild:
			parentID = &target.ID
			position = 0
		case PositionLeft:
			parentID = target.ParentID
			position = target.Position
		case PositionRight:
			parentID = target.ParentID
			position = target.Position + 1
		}
	} else {
		switch req.Position {
		case PositionLastChild:
			n, err := s.repository.CountPlugins(ctx, PluginFilter{
				PlaceholderID: placeholder.ID,
				Language:      req.Language,
				RootsOnly:     true,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to count root plugins: %w", err)
			}
			position = n
		default:
			// Without a target there is no reference point for sibling
			// positions; anything but last-child inserts at the front.
			position = 0
		}
	}

	now := time.Now().UTC()
	plugin := &Plugin{
		ID:            uuid.New(),
		PlaceholderID: placeholder.ID,
		ParentID:      parentID,
		Position:      position,
		Language:      req.Language,
		PluginType:    desc.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repository.InsertPluginAt(ctx, plugin); err != nil {
		return nil, &PluginError{PlaceholderID: placeholder.ID, Op: "insert", Err: err}
	}

	if len(req.Data) > 0 {
		if err := s.repository.SetPluginData(ctx, plugin.ID, req.Data); err != nil {
			return nil, &PluginError{PlaceholderID: placeholder.ID, Op: "set_data", Err: err}
		}
		plugin.Data = req.Data
	}

	if s.eventSink != nil {
		// Event failures do not fail the operation.
		_ = s.eventSink.PluginAdded(ctx, plugin)
	}

	return plugin, nil
}

func (s *service) GetPlugin(ctx context.Context, id uuid.UUID) (*Plugin, error) {
	plugin, err := s.repository.GetPlugin(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.repository.GetPluginData(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		plugin.Data = data
	}
	return plugin, nil
}

// CopyPluginsToLanguage duplicates the plugins of every placeholder of a
// page from one language into another, preserving tree order and
// parent/child structure. With onlyEmpty set, placeholders that already
// have content in the target language are skipped. Returns the number of
// plugins copied. Permission checks are the caller's responsibility.
func (s *service) CopyPluginsToLanguage(ctx context.Context, pageID uuid.UUID, sourceLanguage, targetLanguage string, onlyEmpty bool) (int, error) {
	page, err := s.repository.GetPage(ctx, pageID)
	if err != nil {
		return 0, fmt.Errorf("failed to load page: %w", err)
	}

	placeholders, err := s.repository.ListPlaceholders(ctx, page.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list placeholders: %w", err)
	}

	copied := 0
	for _, placeholder := range placeholders {
		if onlyEmpty {
			n, err := s.repository.CountPlugins(ctx, PluginFilter{
				PlaceholderID: placeholder.ID,
				Language:      targetLanguage,
			})
			if err != nil {
				return copied, fmt.Errorf("failed to count target plugins: %w", err)
			}
			if n > 0 {
				continue
			}
		}

		n, err := s.copyPlaceholderPlugins(ctx, placeholder.ID, sourceLanguage, targetLanguage)
		if err != nil {
			return copied, &PluginError{PlaceholderID: placeholder.ID, Op: "copy_language", Err: err}
		}
		copied += n
	}

	if copied > 0 && s.eventSink != nil {
		// Event failures do not fail the operation.
		_ = s.eventSink.PluginsCopied(ctx, page.ID, targetLanguage, copied)
	}

	return copied, nil
}

// copyPlaceholderPlugins clones one placeholder's source-language plugin
// tree into the target language. ListPlugins returns parents before their
// children, so the ID map always has the new parent by the time a child
// is cloned.
func (s *service) copyPlaceholderPlugins(ctx context.Context, placeholderID uuid.UUID, sourceLanguage, targetLanguage string) (int, error) {
	source, err := s.repository.ListPlugins(ctx, PluginFilter{
		PlaceholderID: placeholderID,
		Language:      sourceLanguage,
	})
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	idMap := make(map[uuid.UUID]uuid.UUID, len(source))
	for _, p := range source {
		clone := &Plugin{
			ID:            uuid.New(),
			PlaceholderID: placeholderID,
			Position:      p.Position,
			Language:      targetLanguage,
			PluginType:    p.PluginType,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if p.ParentID != nil {
			mapped, ok := idMap[*p.ParentID]
			if !ok {
				return 0, fmt.Errorf("plugin %s listed before its parent", p.ID)
			}
			clone.ParentID = &mapped
		}

		if err := s.repository.CreatePlugin(ctx, clone); err != nil {
			return 0, err
		}
		data, err := s.repository.GetPluginData(ctx, p.ID)
		if err != nil {
			return 0, err
		}
		if len(data) > 0 {
			if err := s.repository.SetPluginData(ctx, clone.ID, data); err != nil {
				return 0, err
			}
		}
		idMap[p.ID] = clone.ID
	}

	return len(source), nil
}
