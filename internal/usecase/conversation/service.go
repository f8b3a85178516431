package conversation

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/adapter/repository"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/course"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/rag"
)

// Service handles conversations, question answering and archival
type Service struct {
	conversationRepo *repository.ConversationRepository
	chatRepo         *repository.ChatRepository
	archiveRepo      *repository.ArchiveRepository
	userRepo         *repository.UserRepository
	courseService    *course.Service
	ragService       *rag.Service
	logger           *zap.Logger
}

// NewService creates a new conversation service
func NewService(
	conversationRepo *repository.ConversationRepository,
	chatRepo *repository.ChatRepository,
	archiveRepo *repository.ArchiveRepository,
	userRepo *repository.UserRepository,
	courseService *course.Service,
	ragService *rag.Service,
	logger *zap.Logger,
) *Service {
	return &Service{
		conversationRepo: conversationRepo,
		chatRepo:         chatRepo,
		archiveRepo:      archiveRepo,
		userRepo:         userRepo,
		courseService:    courseService,
		ragService:       ragService,
		logger:           logger,
	}
}

// Create starts a new conversation for a user
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title string) (*entities.Conversation, error) {
	conversation := entities.NewConversation(userID, title)
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return conversation, nil
}

// List returns a user's active conversations
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	conversations, err := s.conversationRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return conversations, nil
}

// Get returns one of the user's conversations with its messages
func (s *Service) Get(ctx context.Context, userID, conversationID uuid.UUID) (*entities.Conversation, error) {
	conversation, err := s.findOwned(ctx, userID, conversationID, true)
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// Rename updates a conversation's title
func (s *Service) Rename(ctx context.Context, userID, conversationID uuid.UUID, title string) (*entities.Conversation, error) {
	conversation, err := s.findOwned(ctx, userID, conversationID, false)
	if err != nil {
		return nil, err
	}
	conversation.Title = title
	if err := s.conversationRepo.Update(ctx, conversation); err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return conversation, nil
}

// Delete deactivates one of the user's conversations
func (s *Service) Delete(ctx context.Context, userID, conversationID uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, conversationID, false); err != nil {
		return err
	}
	if err := s.conversationRepo.Delete(ctx, conversationID); err != nil {
		if err == entities.ErrConversationNotFound {
			return errors.ErrConversationNotFound(conversationID.String())
		}
		return errors.ErrDatabase(err)
	}
	return nil
}

// AskRequest is one learner question
type AskRequest struct {
	Question       string     `json:"question" validate:"required,min=2"`
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	CourseID       string     `json:"course_id,omitempty"`
	Section        string     `json:"section,omitempty"`
}

// AskResponse is the grounded answer with its citations and thread
type AskResponse struct {
	ConversationID uuid.UUID       `json:"conversationId"`
	Answer         string          `json:"answer"`
	References     []rag.Reference `json:"references"`
	TokensUsed     int             `json:"tokensUsed"`
}

// Ask answers a question against the user's accessible courses and persists
// both turns of the exchange. When CourseID is set the retrieval scope
// narrows to that single course, provided the user can access it.
func (s *Service) Ask(ctx context.Context, user *entities.User, req *AskRequest) (*AskResponse, error) {
	accessible, err := s.courseService.AccessibleCourseIDs(ctx, user)
	if err != nil {
		return nil, err
	}

	if req.CourseID != "" {
		if !contains(accessible, req.CourseID) {
			return nil, errors.ErrCourseAccessDenied(req.CourseID)
		}
		accessible = []string{req.CourseID}
	}

	conversation, err := s.resolveConversation(ctx, user.ID, req)
	if err != nil {
		return nil, err
	}

	result, err := s.ragService.Answer(ctx, rag.AnswerRequest{
		Question:            req.Question,
		UserID:              user.ID,
		AccessibleCourseIDs: accessible,
		SectionFilter:       req.Section,
	})
	if err != nil {
		return nil, err
	}

	s.persistExchange(ctx, user, conversation, req.Question, result)

	return &AskResponse{
		ConversationID: conversation.ID,
		Answer:         result.Answer,
		References:     result.References,
		TokensUsed:     result.TokensUsed,
	}, nil
}

// persistExchange records both turns. Persistence is best-effort: the answer
// has already been produced and is returned regardless.
func (s *Service) persistExchange(ctx context.Context, user *entities.User, conversation *entities.Conversation, question string, result *rag.AnswerResult) {
	userTurn := &entities.Chat{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		UserID:         user.ID,
		Message:        question,
		Role:           entities.ChatRoleUser,
	}
	if err := s.chatRepo.Create(ctx, userTurn); err != nil {
		s.logger.Warn("failed to persist question turn", zap.Error(err))
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"references": result.References,
	})
	assistantTurn := &entities.Chat{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		UserID:         user.ID,
		Message:        result.Answer,
		Role:           entities.ChatRoleAssistant,
		TokensUsed:     result.TokensUsed,
		Metadata:       datatypes.JSON(metadata),
	}
	if err := s.chatRepo.Create(ctx, assistantTurn); err != nil {
		s.logger.Warn("failed to persist answer turn", zap.Error(err))
	}

	if err := s.conversationRepo.TouchLastMessage(ctx, conversation.ID); err != nil {
		s.logger.Warn("failed to touch conversation", zap.Error(err))
	}

	if !user.IsAdmin() {
		if err := s.userRepo.IncrementMessageCount(ctx, user.ID); err != nil {
			s.logger.Warn("failed to increment message count", zap.Error(err))
		}
	}
}

func (s *Service) resolveConversation(ctx context.Context, userID uuid.UUID, req *AskRequest) (*entities.Conversation, error) {
	if req.ConversationID != nil {
		return s.findOwned(ctx, userID, *req.ConversationID, false)
	}

	conversation := entities.NewConversation(userID, truncateTitle(req.Question, 80))
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return conversation, nil
}

// ArchiveRequest snapshots a conversation into the archive
type ArchiveRequest struct {
	ConversationID uuid.UUID `json:"conversation_id" validate:"required"`
	Description    *string   `json:"description,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
}

// Archive snapshots a conversation and deactivates it
func (s *Service) Archive(ctx context.Context, userID uuid.UUID, req *ArchiveRequest) (*entities.Archive, error) {
	conversation, err := s.findOwned(ctx, userID, req.ConversationID, false)
	if err != nil {
		return nil, err
	}

	count, err := s.chatRepo.CountByConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}

	tags, _ := json.Marshal(req.Tags)
	archive := &entities.Archive{
		UserID:         userID,
		ConversationID: conversation.ID,
		Title:          conversation.Title,
		Description:    req.Description,
		Tags:           datatypes.JSON(tags),
		MessageCount:   int(count),
		ArchivedAt:     time.Now().UTC(),
		IsActive:       true,
	}
	if err := s.archiveRepo.Create(ctx, archive); err != nil {
		return nil, errors.ErrDatabase(err)
	}

	if err := s.conversationRepo.Delete(ctx, conversation.ID); err != nil {
		s.logger.Warn("failed to deactivate archived conversation", zap.Error(err))
	}

	return archive, nil
}

// ListArchives returns a user's archives
func (s *Service) ListArchives(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Archive, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	archives, err := s.archiveRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return archives, nil
}

// GetArchive returns one archive with its conversation's messages
func (s *Service) GetArchive(ctx context.Context, userID uuid.UUID, archiveID uint) (*entities.Archive, []*entities.Chat, error) {
	archive, err := s.archiveRepo.FindByID(ctx, archiveID)
	if err != nil {
		if err == entities.ErrArchiveNotFound {
			return nil, nil, errors.ErrArchiveNotFound(strconv.FormatUint(uint64(archiveID), 10))
		}
		return nil, nil, errors.ErrDatabase(err)
	}
	if archive.UserID != userID {
		return nil, nil, errors.ErrPermissionDenied("read archive")
	}

	chats, err := s.chatRepo.ListByConversation(ctx, archive.ConversationID)
	if err != nil {
		return nil, nil, errors.ErrDatabase(err)
	}

	if err := s.archiveRepo.TouchAccessed(ctx, archiveID); err != nil {
		s.logger.Warn("failed to touch archive", zap.Error(err))
	}

	return archive, chats, nil
}

// RestoreArchive reactivates an archived conversation and retires the
// archive record
func (s *Service) RestoreArchive(ctx context.Context, userID uuid.UUID, archiveID uint) (*entities.Conversation, error) {
	archive, err := s.archiveRepo.FindByID(ctx, archiveID)
	if err != nil {
		if err == entities.ErrArchiveNotFound {
			return nil, errors.ErrArchiveNotFound(strconv.FormatUint(uint64(archiveID), 10))
		}
		return nil, errors.ErrDatabase(err)
	}
	if archive.UserID != userID {
		return nil, errors.ErrPermissionDenied("restore archive")
	}

	if err := s.conversationRepo.Restore(ctx, archive.ConversationID); err != nil {
		if err == entities.ErrConversationNotFound {
			return nil, errors.ErrConversationNotFound(archive.ConversationID.String())
		}
		return nil, errors.ErrDatabase(err)
	}
	if err := s.archiveRepo.Delete(ctx, archiveID); err != nil {
		s.logger.Warn("failed to retire restored archive", zap.Error(err))
	}

	conversation, err := s.conversationRepo.FindByID(ctx, archive.ConversationID, true)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return conversation, nil
}

// DeleteArchive deactivates one of the user's archives
func (s *Service) DeleteArchive(ctx context.Context, userID uuid.UUID, archiveID uint) error {
	archive, err := s.archiveRepo.FindByID(ctx, archiveID)
	if err != nil {
		if err == entities.ErrArchiveNotFound {
			return errors.ErrArchiveNotFound(strconv.FormatUint(uint64(archiveID), 10))
		}
		return errors.ErrDatabase(err)
	}
	if archive.UserID != userID {
		return errors.ErrPermissionDenied("delete archive")
	}

	if err := s.archiveRepo.Delete(ctx, archiveID); err != nil {
		return errors.ErrDatabase(err)
	}
	return nil
}

func (s *Service) findOwned(ctx context.Context, userID, conversationID uuid.UUID, withMessages bool) (*entities.Conversation, error) {
	conversation, err := s.conversationRepo.FindByID(ctx, conversationID, withMessages)
	if err != nil {
		if err == entities.ErrConversationNotFound {
			return nil, errors.ErrConversationNotFound(conversationID.String())
		}
		return nil, errors.ErrDatabase(err)
	}
	if conversation.UserID != userID {
		return nil, errors.ErrPermissionDenied("access conversation")
	}
	if !conversation.IsActive {
		return nil, errors.ErrConversationNotFound(conversationID.String())
	}
	return conversation, nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// truncateTitle caps s at max bytes without splitting a multibyte rune.
func truncateTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
