package api

import (
	"context"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	User      User      `json:"user"`
}

const getUsersQuery = `
	query GetUsers {
		users {
			id
			name
			createdAt
			lastSeen
		}
	}
`

const getUserByIDQuery = `
	query GetUserById($id: ID!) {
		user(id: $id) {
			id
			name
			createdAt
			lastSeen
		}
	}
`

const createUserMutation = `
	mutation CreateUser($name: String!) {
		createUser(name: $name) {
			id
			name
			createdAt
			lastSeen
		}
	}
`

const updateUserLastSeenMutation = `
	mutation UpdateUserLastSeen($id: ID!) {
		updateUserLastSeen(id: $id) {
			id
			name
			createdAt
			lastSeen
		}
	}
`

const getMessagesQuery = `
	query GetMessages {
		messages {
			id
			content
			createdAt
			user {
				id
				name
				createdAt
				lastSeen
			}
		}
	}
`

const createMessageMutation = `
	mutation CreateMessage($content: String!, $userId: ID!) {
		createMessage(content: $content, userId: $userId) {
			id
			content
			createdAt
			user {
				id
				name
				createdAt
				lastSeen
			}
		}
	}
`

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.Do(ctx, getUsersQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// GetUser returns nil without an error when the id is unknown, mirroring the
// nullable user query.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.Do(ctx, getUserByIDQuery, map[string]interface{}{"id": id}, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) CreateUser(ctx context.Context, name string) (User, error) {
	var out struct {
		CreateUser User `json:"createUser"`
	}
	if err := c.Do(ctx, createUserMutation, map[string]interface{}{"name": name}, &out); err != nil {
		return User{}, err
	}
	return out.CreateUser, nil
}

func (c *Client) UpdateUserLastSeen(ctx context.Context, id string) (User, error) {
	var out struct {
		UpdateUserLastSeen User `json:"updateUserLastSeen"`
	}
	if err := c.Do(ctx, updateUserLastSeenMutation, map[string]interface{}{"id": id}, &out); err != nil {
		return User{}, err
	}
	return out.UpdateUserLastSeen, nil
}

func (c *Client) Messages(ctx context.Context) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := c.Do(ctx, getMessagesQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) CreateMessage(ctx context.Context, content, userID string) (Message, error) {
	var out struct {
		CreateMessage Message `json:"createMessage"`
	}
	vars := map[string]interface{}{"content": content, "userId": userID}
	if err := c.Do(ctx, createMessageMutation, vars, &out); err != nil {
		return Message{}, err
	}
	return out.CreateMessage, nil
}
