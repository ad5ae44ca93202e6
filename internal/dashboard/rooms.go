package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"roombook/internal/access"
	"roombook/internal/api"
	"roombook/internal/importer"
	"roombook/internal/model"
	"roombook/internal/validate"
)

func (d *Dashboard) Rooms(ctx context.Context) ([]model.Room, error) {
	if err := d.authorize(access.ResourceRooms, access.ActionRead); err != nil {
		return nil, err
	}
	return d.fetchRooms(ctx)
}

func (d *Dashboard) fetchRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := d.session.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		rooms, err = d.backend.ListRooms(ctx, token)
		return err
	})
	return rooms, err
}

// SaveRoom creates a room when id is empty and updates it otherwise. The
// refreshed room list is returned instead of patching a cached one.
func (d *Dashboard) SaveRoom(ctx context.Context, id string, form validate.RoomForm) ([]model.Room, error) {
	if err := d.authorize(access.ResourceRooms, access.ActionManage); err != nil {
		return nil, err
	}
	in, err := form.Room()
	if err != nil {
		return nil, err
	}

	err = d.session.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		if id == "" {
			_, err = d.backend.CreateRoom(ctx, token, in)
		} else {
			_, err = d.backend.UpdateRoom(ctx, token, id, in)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("Room saved", "id", id, "name", in.Name)
	return d.fetchRooms(ctx)
}

// DeleteRoom removes a room and returns the refreshed room list.
func (d *Dashboard) DeleteRoom(ctx context.Context, id string) ([]model.Room, error) {
	if err := d.authorize(access.ResourceRooms, access.ActionManage); err != nil {
		return nil, err
	}
	err := d.session.Do(ctx, func(ctx context.Context, token string) error {
		return d.backend.DeleteRoom(ctx, token, id)
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("Room deleted", "id", id)
	return d.fetchRooms(ctx)
}

// RowError describes one room list line that was not imported.
type RowError struct {
	Line    int    `json:"line" yaml:"line"`
	Name    string `json:"name" yaml:"name"`
	Message string `json:"message" yaml:"message"`
}

type ImportReport struct {
	Created []model.Room `json:"created" yaml:"created"`
	Failed  []RowError   `json:"failed" yaml:"failed"`
}

// ImportRooms creates every valid room of a room list. Invalid lines and
// rejected rooms are reported and do not stop the import; an expired
// session does.
func (d *Dashboard) ImportRooms(ctx context.Context, r io.Reader) (ImportReport, error) {
	if err := d.authorize(access.ResourceRooms, access.ActionManage); err != nil {
		return ImportReport{}, err
	}
	rows, err := importer.Parse(r)
	if err != nil {
		return ImportReport{}, err
	}

	var report ImportReport
	for _, row := range rows {
		in, err := row.Form.Room()
		if err != nil {
			report.Failed = append(report.Failed, RowError{Line: row.Line, Name: row.Form.Name, Message: validationText(err)})
			continue
		}

		var created model.Room
		err = d.session.Do(ctx, func(ctx context.Context, token string) error {
			var err error
			created, err = d.backend.CreateRoom(ctx, token, in)
			return err
		})
		if err != nil {
			var reqErr *api.RequestError
			if !errors.As(err, &reqErr) || api.IsAuthError(err) {
				return report, fmt.Errorf("import stopped at line %d: %w", row.Line, err)
			}
			report.Failed = append(report.Failed, RowError{Line: row.Line, Name: in.Name, Message: api.Message(err)})
			continue
		}
		report.Created = append(report.Created, created)
	}

	d.logger.Info("Room list imported", "created", len(report.Created), "failed", len(report.Failed))
	return report, nil
}

func validationText(err error) string {
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		if msgs := verr.Messages(); len(msgs) > 0 {
			return msgs[0]
		}
	}
	return err.Error()
}
