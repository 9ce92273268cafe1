package message

import (
	"context"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// Repository persists chat messages.
type Repository interface {
	Insert(ctx context.Context, m *Message) error
	// MarkRead flags every unread message from senderID to receiverID as
	// read and returns how many changed.
	MarkRead(ctx context.Context, senderID, receiverID uint) (int64, error)
	// Conversation returns one page of messages between a and b, oldest first.
	Conversation(ctx context.Context, a, b uint, page, pageSize int) ([]Message, int64, error)
	UnreadCounts(ctx context.Context, receiverID uint) ([]UnreadCount, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Insert(ctx context.Context, m *Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return eris.Wrap(err, "failed to store message")
	}
	return nil
}

func (r *GormMessageRepository) MarkRead(ctx context.Context, senderID, receiverID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, eris.Wrapf(res.Error, "failed to mark messages from %d to %d read", senderID, receiverID)
	}
	return res.RowsAffected, nil
}

func (r *GormMessageRepository) Conversation(ctx context.Context, a, b uint, page, pageSize int) ([]Message, int64, error) {
	var messages []Message
	var total int64

	query := r.db.WithContext(ctx).Model(&Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, eris.Wrap(err, "failed to count conversation")
	}

	offset := (page - 1) * pageSize
	if err := query.Order("timestamp ASC").Order("id ASC").Offset(offset).Limit(pageSize).Find(&messages).Error; err != nil {
		return nil, 0, eris.Wrap(err, "failed to load conversation")
	}
	return messages, total, nil
}

func (r *GormMessageRepository) UnreadCounts(ctx context.Context, receiverID uint) ([]UnreadCount, error) {
	var counts []UnreadCount
	err := r.db.WithContext(ctx).Model(&Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Group("sender_id").
		Order("sender_id").
		Scan(&counts).Error
	if err != nil {
		return nil, eris.Wrap(err, "failed to count unread messages")
	}
	return counts, nil
}
