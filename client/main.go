package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/minesduel/network"
)

var eventNames = map[uint16]string{
	network.MsgTypeJoinRoom: "join",
	network.MsgTypeNewRoom:  "new",
	network.MsgTypeMove:     "move",
	network.MsgTypeStart:    "start",
	network.MsgTypeFinish:   "finish",
	network.MsgTypeLeave:    "leave",
	network.MsgTypeTurn:     "turn",
	network.MsgTypeReveal:   "reveal",
	network.MsgTypeLastMove: "last_move",
	network.MsgTypeScore:    "score",
}

// client keeps the connection and the room the player is in.
type client struct {
	conn   *websocket.Conn
	mutex  sync.Mutex
	roomID string
}

// send formats and sends a message to the WebSocket server.
func (c *client) send(msgID uint16, v interface{}) error {
	var data []byte
	if v != nil {
		var err error
		if data, err = network.Encode(v); err != nil {
			return err
		}
	}
	packet, err := network.EncodeFrame(msgID, data)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, packet)
}

func (c *client) room() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.roomID
}

func (c *client) setRoom(id string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.roomID = id
}

func (c *client) readLoop(done chan struct{}) {
	defer close(done)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			log.Println("Read error:", err)
			return
		}
		packet, err := network.DecodeFrame(message)
		if err != nil {
			log.Printf("Received invalid packet of size %d", len(message))
			continue
		}

		// new/join 的成功回复是房间号
		if packet.MsgID == network.MsgTypeNewRoom || packet.MsgID == network.MsgTypeJoinRoom {
			var id string
			if network.Decode(packet.Data, &id) == nil {
				c.setRoom(id)
			}
		}

		name, ok := eventNames[packet.MsgID]
		if !ok {
			name = strconv.Itoa(int(packet.MsgID))
		}
		log.Printf("<- %s: %s", name, packet.Data)
	}
}

func (c *client) handleCommand(fields []string) error {
	switch fields[0] {
	case "new":
		return c.send(network.MsgTypeNewRoom, nil)
	case "join":
		if len(fields) != 2 {
			return fmt.Errorf("usage: join <room>")
		}
		return c.send(network.MsgTypeJoinRoom, network.RoomRequest{RoomID: fields[1]})
	case "leave":
		err := c.send(network.MsgTypeLeaveRoom, network.RoomRequest{RoomID: c.room()})
		c.setRoom("")
		return err
	case "move":
		if len(fields) != 3 {
			return fmt.Errorf("usage: move <row> <col>")
		}
		row, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		col, err := strconv.Atoi(fields[2])
		if err != nil {
			return err
		}
		return c.send(network.MsgTypeMove, network.MoveRequest{RoomID: c.room(), Row: row, Col: col})
	case "ping":
		return c.send(network.MsgTypeHeartbeat, nil)
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "game server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	c := &client{conn: conn}
	done := make(chan struct{})
	go c.readLoop(done)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	log.Println("Commands: new | join <room> | move <row> <col> | leave | ping")

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := c.send(network.MsgTypeHeartbeat, nil); err != nil {
				log.Println("Write error:", err)
				return
			}
		case line, ok := <-lines:
			if !ok {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if err := c.handleCommand(fields); err != nil {
				log.Println(err)
			}
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			c.mutex.Lock()
			err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.mutex.Unlock()
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
