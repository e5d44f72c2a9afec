package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Client struct {
	Bot          *tgbotapi.BotAPI
	UpdateConfig tgbotapi.UpdateConfig
	logger       *logrus.Logger
}

func NewClient(token string, debug bool) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	bot.Debug = debug

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Client{
		Bot:          bot,
		UpdateConfig: updateConfig,
		logger:       logger,
	}, nil
}

// Send отправляет сообщение и логирует ошибку доставки
func (c *Client) Send(msg tgbotapi.Chattable) {
	if _, err := c.Bot.Send(msg); err != nil {
		c.logger.WithError(err).Warn("Failed to send telegram message")
	}
}

func (c *Client) SendText(chatID int64, text string) {
	c.Send(tgbotapi.NewMessage(chatID, text))
}

// AnswerCallback убирает "часики" у inline кнопки
func (c *Client) AnswerCallback(callbackID, text string) {
	if _, err := c.Bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		c.logger.WithError(err).Warn("Failed to answer callback")
	}
}

func (c *Client) Updates() tgbotapi.UpdatesChannel {
	return c.Bot.GetUpdatesChan(c.UpdateConfig)
}

func (c *Client) Stop() {
	c.Bot.StopReceivingUpdates()
}
