package services

import (
	"context"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// LineBotNotifier implements LineNotifier against the LINE Messaging API.
type LineBotNotifier struct {
	client *linebot.Client
}

func NewLineBotNotifier(channelSecret, channelToken string) (*LineBotNotifier, error) {
	client, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, err
	}
	return &LineBotNotifier{client: client}, nil
}

func (n *LineBotNotifier) Push(ctx context.Context, lineUserID string, message string) error {
	_, err := n.client.PushMessage(lineUserID, linebot.NewTextMessage(message)).WithContext(ctx).Do()
	return err
}

func (n *LineBotNotifier) GetProfile(ctx context.Context, lineUserID string) (string, *string, error) {
	profile, err := n.client.GetProfile(lineUserID).WithContext(ctx).Do()
	if err != nil {
		return "", nil, err
	}
	var pictureURL *string
	if profile.PictureURL != "" {
		pictureURL = &profile.PictureURL
	}
	return profile.DisplayName, pictureURL, nil
}
