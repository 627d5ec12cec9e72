package memory

import (
	"context"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
)

type notificationRepository struct {
	st *state
}

func cloneNotification(n domain.Notification) domain.Notification {
	if n.Attributes != nil {
		attrs := make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			attrs[k] = v
		}
		n.Attributes = attrs
	}
	return n
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	unlock, err := r.st.write(ctx, "failed to create notification")
	if err != nil {
		return err
	}
	defer unlock()

	if !r.st.notifications.insert(n.ID, n.CreatedAt, cloneNotification(*n)) {
		return domain.NewConflictError("notification %s already exists", n.ID)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	unlock, err := r.st.read(ctx, "failed to list notifications")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	all := r.st.notifications.list(func(n domain.Notification) bool { return n.UserID == userID }, repository.SortNewestFirst)
	total := int32(len(all))
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Notification{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	page := all[offset:end]
	for i := range page {
		page[i] = cloneNotification(page[i])
	}
	return page, total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	unlock, err := r.st.write(ctx, "failed to mark notification read")
	if err != nil {
		return err
	}
	defer unlock()

	n, ok := r.st.notifications.get(id)
	if !ok || n.UserID != userID {
		return domain.NewNotFoundError("notification", id)
	}
	n.IsRead = true
	r.st.notifications.replace(id, n)
	return nil
}
